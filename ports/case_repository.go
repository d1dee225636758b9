package ports

import (
	"context"

	"courtflow/models"

	"github.com/google/uuid"
)

// CaseRepository defines data access for court cases.
type CaseRepository interface {
	GetCase(ctx context.Context, caseID uuid.UUID) (*models.CourtCase, error)
	CreateCase(ctx context.Context, c *models.CourtCase) error
	ListCasesByCourt(ctx context.Context, courtID uuid.UUID, limit int) ([]*models.CourtCase, error)

	// ListEndedSessions returns ended sessions for every case of a court,
	// for the analytics view.
	ListEndedSessions(ctx context.Context, courtID uuid.UUID) ([]*models.Session, error)

	// ListPermissionOutcomes returns the status of every responded
	// permission request under a court's cases.
	ListPermissionOutcomes(ctx context.Context, courtID uuid.UUID) ([]models.PermissionStatus, error)
}
