package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DiaryRepository implements DiaryWriter and DiaryReader for PostgreSQL.
// The table is append-only: there is no update or delete path anywhere in
// this type, and the coordinator only ever holds the writer interface.
type DiaryRepository struct {
	db *sqlx.DB
}

// NewDiaryRepository creates a new PostgreSQL diary repository
func NewDiaryRepository(db *sqlx.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

var _ ports.DiaryWriter = (*DiaryRepository)(nil)
var _ ports.DiaryReader = (*DiaryRepository)(nil)

// Append inserts one immutable diary entry
func (r *DiaryRepository) Append(ctx context.Context, caseID uuid.UUID, action models.DiaryAction, actorID uuid.UUID, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal diary details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO case_diary (case_id, action, actor_id, details)
		VALUES ($1, $2, $3, $4)
	`, caseID, action, actorID, detailsJSON)

	if err != nil {
		return fmt.Errorf("failed to append diary entry: %w", err)
	}
	return nil
}

// ListEntries returns a case's diary, newest first
func (r *DiaryRepository) ListEntries(ctx context.Context, caseID uuid.UUID, limit int) ([]*models.DiaryEntry, error) {
	query := `
		SELECT id, case_id, action, actor_id, details, created_at
		FROM case_diary
		WHERE case_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{caseID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.DiaryEntry
	for rows.Next() {
		var entry models.DiaryEntry
		var detailsJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.Action,
			&entry.ActorID,
			&detailsJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal diary details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
