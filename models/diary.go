package models

import (
	"time"

	"github.com/google/uuid"
)

// DiaryAction tags an append-only case diary entry.
type DiaryAction string

const (
	DiaryActionSessionStart      DiaryAction = "SESSION_START"
	DiaryActionSessionEnd        DiaryAction = "SESSION_END"
	DiaryActionEvidenceSealed    DiaryAction = "EVIDENCE_SEALED"
	DiaryActionEvidenceSubmitted DiaryAction = "EVIDENCE_SUBMITTED"
	DiaryActionCaseCreated       DiaryAction = "CASE_CREATED"
)

// DiaryEntry is one immutable audit record for a case. Entries are only
// ever inserted; nothing in the system updates or deletes them, and the
// coordinator never reads them back.
type DiaryEntry struct {
	ID        uuid.UUID              `json:"id" db:"id"`
	CaseID    uuid.UUID              `json:"case_id" db:"case_id"`
	Action    DiaryAction            `json:"action" db:"action"`
	ActorID   uuid.UUID              `json:"actor_id" db:"actor_id"`
	Details   map[string]interface{} `json:"details" db:"-"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
