package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a court session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	// SessionStatusPaused exists in the schema but no transition currently
	// produces it. Retained for a future pause/resume flow.
	SessionStatusPaused SessionStatus = "paused"
	SessionStatusEnded  SessionStatus = "ended"
)

// Session represents one judge-led live hearing window for exactly one case.
// At most one session per case should be active at a time; the coordinator
// checks before creating and the schema carries a partial unique index as
// backstop, but two racing clients can still both observe "no active session"
// before either write lands.
type Session struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	CaseID    uuid.UUID     `json:"case_id" db:"case_id"`
	JudgeID   uuid.UUID     `json:"judge_id" db:"judge_id"`
	Status    SessionStatus `json:"status" db:"status"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty" db:"ended_at"`
	Notes     string        `json:"notes" db:"notes"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// NewSession creates an active session owned by the given judge.
func NewSession(caseID, judgeID uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		CaseID:    caseID,
		JudgeID:   judgeID,
		Status:    SessionStatusActive,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLive reports whether the session currently admits permission activity.
func (s *Session) IsLive() bool {
	return s != nil && s.Status == SessionStatusActive
}

// DurationMinutes returns the rounded session length in minutes. For a
// session that has not ended it measures against the current time.
func (s *Session) DurationMinutes(now time.Time) int {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return int(end.Sub(s.StartedAt).Round(time.Minute) / time.Minute)
}

// CanTransitionTo validates a session status transition. The only valid
// transition today is active -> ended; ended is terminal.
func (s *Session) CanTransitionTo(next SessionStatus) bool {
	switch s.Status {
	case SessionStatusActive:
		return next == SessionStatusEnded
	default:
		return false
	}
}

// SessionPatch is a partial update applied through the repository.
// Nil fields are left untouched.
type SessionPatch struct {
	Status  *SessionStatus
	EndedAt *time.Time
	Notes   *string
}
