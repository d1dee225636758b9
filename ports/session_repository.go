package ports

import (
	"context"

	"courtflow/models"

	"github.com/google/uuid"
)

// SessionRepository defines data access for sessions and permission
// requests. Pure pass-through to the record store; no business rules.
type SessionRepository interface {
	// FindActiveSession returns the single active session for a case, or
	// nil when none exists. Newest started_at wins if the store ever holds
	// more than one active row.
	FindActiveSession(ctx context.Context, caseID uuid.UUID) (*models.Session, error)

	// CreateSession inserts an active session started now.
	CreateSession(ctx context.Context, caseID, judgeID uuid.UUID) (*models.Session, error)

	// UpdateSession applies a partial update to one session.
	UpdateSession(ctx context.Context, sessionID uuid.UUID, patch models.SessionPatch) error

	// ListPermissions returns permission requests for a case, newest
	// request first, optionally narrowed to one session.
	ListPermissions(ctx context.Context, caseID uuid.UUID, sessionID *uuid.UUID) ([]*models.PermissionRequest, error)

	// CreatePermissionRequest inserts a pending request.
	CreatePermissionRequest(ctx context.Context, sessionID, caseID, requesterID uuid.UUID) (*models.PermissionRequest, error)

	// UpdatePermissionRequest applies a partial update to one request.
	UpdatePermissionRequest(ctx context.Context, requestID uuid.UUID, patch models.PermissionPatch) error

	// ExpirePendingPermissions bulk-sets status=expired for every pending
	// request under a session. Returns the number of rows expired.
	ExpirePendingPermissions(ctx context.Context, sessionID uuid.UUID) (int64, error)
}
