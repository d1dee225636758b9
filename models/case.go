package models

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents where a case sits in its overall life.
type CaseStatus string

const (
	CaseStatusFiled    CaseStatus = "filed"
	CaseStatusHearing  CaseStatus = "hearing"
	CaseStatusDecided  CaseStatus = "decided"
	CaseStatusArchived CaseStatus = "archived"
)

// CourtCase is the record every session, permission and diary entry hangs
// off. The assigned judge is the only principal allowed to run sessions
// for the case.
type CourtCase struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CourtID    uuid.UUID  `json:"court_id" db:"court_id"`
	CaseNumber string     `json:"case_number" db:"case_number"`
	Title      string     `json:"title" db:"title"`
	JudgeID    uuid.UUID  `json:"judge_id" db:"judge_id"`
	Status     CaseStatus `json:"status" db:"status"`
	FiledAt    time.Time  `json:"filed_at" db:"filed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
