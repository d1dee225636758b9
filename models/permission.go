package models

import (
	"time"

	"github.com/google/uuid"
)

// PermissionStatus represents the lifecycle state of an upload permission
// request. granted, denied and expired are all terminal.
type PermissionStatus string

const (
	PermissionStatusPending PermissionStatus = "pending"
	PermissionStatusGranted PermissionStatus = "granted"
	PermissionStatusDenied  PermissionStatus = "denied"
	PermissionStatusExpired PermissionStatus = "expired"
)

// PermissionDecision is a judge's answer to a pending request.
type PermissionDecision string

const (
	DecisionGrant PermissionDecision = "grant"
	DecisionDeny  PermissionDecision = "deny"
)

// Status maps a decision to the terminal status it produces.
func (d PermissionDecision) Status() (PermissionStatus, bool) {
	switch d {
	case DecisionGrant:
		return PermissionStatusGranted, true
	case DecisionDeny:
		return PermissionStatusDenied, true
	}
	return "", false
}

// PermissionRequest represents one participant's request for upload rights
// during a specific session. case_id is denormalized so case-scoped feeds
// and queries do not need a join.
type PermissionRequest struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	SessionID   uuid.UUID        `json:"session_id" db:"session_id"`
	CaseID      uuid.UUID        `json:"case_id" db:"case_id"`
	RequesterID uuid.UUID        `json:"requester_id" db:"requester_id"`
	Status      PermissionStatus `json:"status" db:"status"`
	RequestedAt time.Time        `json:"requested_at" db:"requested_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty" db:"responded_at"`
	RespondedBy *uuid.UUID       `json:"responded_by,omitempty" db:"responded_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// NewPermissionRequest creates a pending request scoped to a session.
func NewPermissionRequest(sessionID, caseID, requesterID uuid.UUID) *PermissionRequest {
	now := time.Now().UTC()
	return &PermissionRequest{
		ID:          uuid.New(),
		SessionID:   sessionID,
		CaseID:      caseID,
		RequesterID: requesterID,
		Status:      PermissionStatusPending,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOpen reports whether the request still occupies the requester's single
// live slot for the session (pending or granted).
func (r *PermissionRequest) IsOpen() bool {
	return r.Status == PermissionStatusPending || r.Status == PermissionStatusGranted
}

// CanTransitionTo validates a permission status transition. Only pending
// requests move; every other status is terminal.
func (r *PermissionRequest) CanTransitionTo(next PermissionStatus) bool {
	if r.Status != PermissionStatusPending {
		return false
	}
	switch next {
	case PermissionStatusGranted, PermissionStatusDenied, PermissionStatusExpired:
		return true
	}
	return false
}

// PermissionPatch is a partial update applied through the repository.
type PermissionPatch struct {
	Status      *PermissionStatus
	RespondedAt *time.Time
	RespondedBy *uuid.UUID
}
