package ports

import (
	"context"

	"courtflow/models"

	"github.com/google/uuid"
)

// DiaryWriter appends immutable audit entries to the case diary. Calls are
// fire-and-forget from the coordinator's point of view: an append failure
// never rolls back the transition that triggered it.
type DiaryWriter interface {
	Append(ctx context.Context, caseID uuid.UUID, action models.DiaryAction, actorID uuid.UUID, details map[string]interface{}) error
}

// DiaryReader lists entries for the viewer and export surfaces. Kept
// separate from DiaryWriter so the coordinator can only ever append.
type DiaryReader interface {
	ListEntries(ctx context.Context, caseID uuid.UUID, limit int) ([]*models.DiaryEntry, error)
}
