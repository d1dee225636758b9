package postgres

import (
	"context"
	"database/sql"
	"time"

	"courtflow/internal/errors"
	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EvidenceRepositoryImpl implements EvidenceRepository for PostgreSQL
type EvidenceRepositoryImpl struct {
	db *sqlx.DB
}

// NewEvidenceRepository creates a new PostgreSQL evidence repository
func NewEvidenceRepository(db *sqlx.DB) ports.EvidenceRepository {
	return &EvidenceRepositoryImpl{db: db}
}

// CreateEvidence inserts evidence metadata. The binary has already been
// placed (or reserved) under e.StorageKey by the object store.
func (r *EvidenceRepositoryImpl) CreateEvidence(ctx context.Context, e *models.Evidence) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO evidence (id, case_id, session_id, uploader_id, title, filename, storage_key, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.CaseID, e.SessionID, e.UploaderID, e.Title, e.Filename, e.StorageKey, e.ContentType, e.SizeBytes, e.UploadedAt)

	if err != nil {
		return errors.StoreError(err)
	}
	return nil
}

// GetEvidence retrieves one evidence record by id
func (r *EvidenceRepositoryImpl) GetEvidence(ctx context.Context, evidenceID uuid.UUID) (*models.Evidence, error) {
	var e models.Evidence
	err := r.db.GetContext(ctx, &e, `
		SELECT id, case_id, session_id, uploader_id, title, filename, storage_key, content_type, size_bytes, sealed, sealed_at, sealed_by, uploaded_at
		FROM evidence
		WHERE id = $1
	`, evidenceID)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("evidence")
	}
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return &e, nil
}

// ListEvidence returns a case's evidence, newest upload first
func (r *EvidenceRepositoryImpl) ListEvidence(ctx context.Context, caseID uuid.UUID) ([]*models.Evidence, error) {
	var evidence []*models.Evidence
	err := r.db.SelectContext(ctx, &evidence, `
		SELECT id, case_id, session_id, uploader_id, title, filename, storage_key, content_type, size_bytes, sealed, sealed_at, sealed_by, uploaded_at
		FROM evidence
		WHERE case_id = $1
		ORDER BY uploaded_at DESC
	`, caseID)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return evidence, nil
}

// SealEvidence flips the sealed flag. One-way: a sealed row stays sealed,
// and re-sealing is a no-op at the SQL level.
func (r *EvidenceRepositoryImpl) SealEvidence(ctx context.Context, evidenceID, judgeID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE evidence
		SET sealed = true, sealed_at = $2, sealed_by = $3
		WHERE id = $1 AND sealed = false
	`, evidenceID, time.Now().UTC(), judgeID)

	if err != nil {
		return errors.StoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.StoreError(err)
	}
	if affected == 0 {
		return errors.NotFound("unsealed evidence")
	}
	return nil
}
