package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSession_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    SessionStatus
		to      SessionStatus
		allowed bool
	}{
		{name: "active to ended", from: SessionStatusActive, to: SessionStatusEnded, allowed: true},
		{name: "active to paused not exercised", from: SessionStatusActive, to: SessionStatusPaused, allowed: false},
		{name: "ended is terminal", from: SessionStatusEnded, to: SessionStatusActive, allowed: false},
		{name: "ended to ended", from: SessionStatusEnded, to: SessionStatusEnded, allowed: false},
		{name: "paused has no exit", from: SessionStatusPaused, to: SessionStatusActive, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Status: tt.from}
			if got := s.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestPermissionRequest_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    PermissionStatus
		to      PermissionStatus
		allowed bool
	}{
		{name: "pending to granted", from: PermissionStatusPending, to: PermissionStatusGranted, allowed: true},
		{name: "pending to denied", from: PermissionStatusPending, to: PermissionStatusDenied, allowed: true},
		{name: "pending to expired", from: PermissionStatusPending, to: PermissionStatusExpired, allowed: true},
		{name: "granted is terminal", from: PermissionStatusGranted, to: PermissionStatusExpired, allowed: false},
		{name: "denied is terminal", from: PermissionStatusDenied, to: PermissionStatusGranted, allowed: false},
		{name: "expired is terminal", from: PermissionStatusExpired, to: PermissionStatusPending, allowed: false},
		{name: "pending cannot reset", from: PermissionStatusPending, to: PermissionStatusPending, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &PermissionRequest{Status: tt.from}
			if got := r.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestPermissionRequest_IsOpen(t *testing.T) {
	open := map[PermissionStatus]bool{
		PermissionStatusPending: true,
		PermissionStatusGranted: true,
		PermissionStatusDenied:  false,
		PermissionStatusExpired: false,
	}
	for status, want := range open {
		r := &PermissionRequest{Status: status}
		if got := r.IsOpen(); got != want {
			t.Errorf("IsOpen() with status %s = %v, want %v", status, got, want)
		}
	}
}

func TestSession_DurationMinutes(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		ended time.Time
		want  int
	}{
		{name: "exact minutes", ended: started.Add(47 * time.Minute), want: 47},
		{name: "rounds down under half", ended: started.Add(12*time.Minute + 20*time.Second), want: 12},
		{name: "rounds up over half", ended: started.Add(12*time.Minute + 40*time.Second), want: 13},
		{name: "zero length", ended: started, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ended := tt.ended
			s := &Session{StartedAt: started, EndedAt: &ended}
			if got := s.DurationMinutes(time.Now()); got != tt.want {
				t.Errorf("DurationMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPermissionDecision_Status(t *testing.T) {
	if status, ok := DecisionGrant.Status(); !ok || status != PermissionStatusGranted {
		t.Errorf("DecisionGrant.Status() = %s, %v", status, ok)
	}
	if status, ok := DecisionDeny.Status(); !ok || status != PermissionStatusDenied {
		t.Errorf("DecisionDeny.Status() = %s, %v", status, ok)
	}
	if _, ok := PermissionDecision("abstain").Status(); ok {
		t.Error("unknown decision should not map to a status")
	}
}

func TestNewPermissionRequest(t *testing.T) {
	sessionID, caseID, requesterID := uuid.New(), uuid.New(), uuid.New()
	r := NewPermissionRequest(sessionID, caseID, requesterID)

	if r.Status != PermissionStatusPending {
		t.Errorf("new request status = %s, want pending", r.Status)
	}
	if r.SessionID != sessionID || r.CaseID != caseID || r.RequesterID != requesterID {
		t.Error("new request did not carry scope ids")
	}
	if r.RespondedAt != nil || r.RespondedBy != nil {
		t.Error("new request must not carry a response")
	}
}
