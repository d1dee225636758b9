package ports

import (
	"context"

	"courtflow/models"

	"github.com/google/uuid"
)

// EvidenceRepository defines data access for evidence metadata rows.
type EvidenceRepository interface {
	CreateEvidence(ctx context.Context, e *models.Evidence) error
	GetEvidence(ctx context.Context, evidenceID uuid.UUID) (*models.Evidence, error)
	ListEvidence(ctx context.Context, caseID uuid.UUID) ([]*models.Evidence, error)

	// SealEvidence flips the sealed flag; sealing is one-way.
	SealEvidence(ctx context.Context, evidenceID, judgeID uuid.UUID) error
}
