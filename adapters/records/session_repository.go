package records

import (
	"context"
	"time"

	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
)

const (
	tableSessions    = "court_sessions"
	tablePermissions = "permission_requests"
)

// SessionRepositoryImpl implements ports.SessionRepository as thin
// pass-throughs to the generic record store. No business rules live here;
// the store also enforces row-level authorization server-side, so every
// call can come back with an authorization failure regardless of what the
// coordinator already checked.
type SessionRepositoryImpl struct {
	store ports.RecordStore
}

// NewSessionRepository creates a record-store-backed session repository
func NewSessionRepository(store ports.RecordStore) ports.SessionRepository {
	return &SessionRepositoryImpl{store: store}
}

// FindActiveSession returns the single active session for a case, or nil.
// Ordered newest-first and limited to one row to tolerate the transient
// anomaly where more than one active row exists.
func (r *SessionRepositoryImpl) FindActiveSession(ctx context.Context, caseID uuid.UUID) (*models.Session, error) {
	rows, err := r.store.Query(ctx, tableSessions,
		[]ports.Filter{
			{Column: "case_id", Value: caseID},
			{Column: "status", Value: string(models.SessionStatusActive)},
		},
		&ports.Order{Column: "started_at", Descending: true},
		1,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return SessionFromRow(rows[0])
}

// CreateSession inserts an active session started now
func (r *SessionRepositoryImpl) CreateSession(ctx context.Context, caseID, judgeID uuid.UUID) (*models.Session, error) {
	row, err := r.store.Insert(ctx, tableSessions, ports.Row{
		"case_id":    caseID,
		"judge_id":   judgeID,
		"status":     string(models.SessionStatusActive),
		"started_at": time.Now().UTC(),
		"notes":      "",
	})
	if err != nil {
		return nil, err
	}
	return SessionFromRow(row)
}

// UpdateSession applies a partial update to one session
func (r *SessionRepositoryImpl) UpdateSession(ctx context.Context, sessionID uuid.UUID, patch models.SessionPatch) error {
	fields := ports.Row{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.EndedAt != nil {
		fields["ended_at"] = *patch.EndedAt
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	return r.store.Update(ctx, tableSessions, sessionID, fields)
}

// ListPermissions returns permission requests for a case, newest first
func (r *SessionRepositoryImpl) ListPermissions(ctx context.Context, caseID uuid.UUID, sessionID *uuid.UUID) ([]*models.PermissionRequest, error) {
	filters := []ports.Filter{{Column: "case_id", Value: caseID}}
	if sessionID != nil {
		filters = append(filters, ports.Filter{Column: "session_id", Value: *sessionID})
	}

	rows, err := r.store.Query(ctx, tablePermissions, filters,
		&ports.Order{Column: "requested_at", Descending: true}, 0)
	if err != nil {
		return nil, err
	}

	requests := make([]*models.PermissionRequest, 0, len(rows))
	for _, row := range rows {
		request, err := PermissionFromRow(row)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// CreatePermissionRequest inserts a pending request
func (r *SessionRepositoryImpl) CreatePermissionRequest(ctx context.Context, sessionID, caseID, requesterID uuid.UUID) (*models.PermissionRequest, error) {
	row, err := r.store.Insert(ctx, tablePermissions, ports.Row{
		"session_id":   sessionID,
		"case_id":      caseID,
		"requester_id": requesterID,
		"status":       string(models.PermissionStatusPending),
		"requested_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return PermissionFromRow(row)
}

// UpdatePermissionRequest applies a partial update to one request
func (r *SessionRepositoryImpl) UpdatePermissionRequest(ctx context.Context, requestID uuid.UUID, patch models.PermissionPatch) error {
	fields := ports.Row{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.RespondedAt != nil {
		fields["responded_at"] = *patch.RespondedAt
	}
	if patch.RespondedBy != nil {
		fields["responded_by"] = *patch.RespondedBy
	}
	return r.store.Update(ctx, tablePermissions, requestID, fields)
}

// ExpirePendingPermissions bulk-sets status=expired for pending requests
// under a session. Granted and denied requests are left untouched.
func (r *SessionRepositoryImpl) ExpirePendingPermissions(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	return r.store.UpdateWhere(ctx, tablePermissions,
		[]ports.Filter{
			{Column: "session_id", Value: sessionID},
			{Column: "status", Value: string(models.PermissionStatusPending)},
		},
		ports.Row{
			"status":     string(models.PermissionStatusExpired),
			"updated_at": time.Now().UTC(),
		},
	)
}
