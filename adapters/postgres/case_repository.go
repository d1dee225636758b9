package postgres

import (
	"context"
	"database/sql"

	"courtflow/internal/errors"
	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CaseRepositoryImpl implements CaseRepository for PostgreSQL
type CaseRepositoryImpl struct {
	db *sqlx.DB
}

// NewCaseRepository creates a new PostgreSQL case repository
func NewCaseRepository(db *sqlx.DB) ports.CaseRepository {
	return &CaseRepositoryImpl{db: db}
}

// GetCase retrieves one case by id
func (r *CaseRepositoryImpl) GetCase(ctx context.Context, caseID uuid.UUID) (*models.CourtCase, error) {
	var c models.CourtCase
	err := r.db.GetContext(ctx, &c, `
		SELECT id, court_id, case_number, title, judge_id, status, filed_at, created_at, updated_at
		FROM cases
		WHERE id = $1
	`, caseID)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("case")
	}
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return &c, nil
}

// CreateCase inserts a new case
func (r *CaseRepositoryImpl) CreateCase(ctx context.Context, c *models.CourtCase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cases (id, court_id, case_number, title, judge_id, status, filed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.CourtID, c.CaseNumber, c.Title, c.JudgeID, c.Status, c.FiledAt)

	if err != nil {
		return errors.StoreError(err)
	}
	return nil
}

// ListCasesByCourt returns cases belonging to a court, newest filing first
func (r *CaseRepositoryImpl) ListCasesByCourt(ctx context.Context, courtID uuid.UUID, limit int) ([]*models.CourtCase, error) {
	query := `
		SELECT id, court_id, case_number, title, judge_id, status, filed_at, created_at, updated_at
		FROM cases
		WHERE court_id = $1
		ORDER BY filed_at DESC
	`
	args := []interface{}{courtID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var cases []*models.CourtCase
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, errors.StoreError(err)
	}
	return cases, nil
}

// ListEndedSessions returns ended sessions across a court's cases, for the
// analytics view.
func (r *CaseRepositoryImpl) ListEndedSessions(ctx context.Context, courtID uuid.UUID) ([]*models.Session, error) {
	var sessions []*models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT s.id, s.case_id, s.judge_id, s.status, s.started_at, s.ended_at, s.notes, s.created_at, s.updated_at
		FROM court_sessions s
		JOIN cases c ON c.id = s.case_id
		WHERE c.court_id = $1 AND s.status = 'ended'
		ORDER BY s.started_at DESC
	`, courtID)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return sessions, nil
}

// ListPermissionOutcomes returns the status of every responded request
// under a court's cases.
func (r *CaseRepositoryImpl) ListPermissionOutcomes(ctx context.Context, courtID uuid.UUID) ([]models.PermissionStatus, error) {
	var statuses []models.PermissionStatus
	err := r.db.SelectContext(ctx, &statuses, `
		SELECT p.status
		FROM permission_requests p
		JOIN cases c ON c.id = p.case_id
		WHERE c.court_id = $1 AND p.status IN ('granted', 'denied')
	`, courtID)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	return statuses, nil
}
