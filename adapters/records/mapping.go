package records

import (
	"fmt"
	"time"

	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
)

// Row values arrive either as native Go types (in-memory store, tests) or
// as driver types (lib/pq hands uuids back as []byte/string). The helpers
// below absorb both shapes.

func rowUUID(row ports.Row, key string) (uuid.UUID, error) {
	switch v := row[key].(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		return uuid.Parse(string(v))
	case nil:
		return uuid.Nil, fmt.Errorf("column %s is null", key)
	}
	return uuid.Nil, fmt.Errorf("column %s has unsupported type %T", key, row[key])
}

func rowUUIDPtr(row ports.Row, key string) *uuid.UUID {
	if row[key] == nil {
		return nil
	}
	id, err := rowUUID(row, key)
	if err != nil {
		return nil
	}
	return &id
}

func rowTime(row ports.Row, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		// Feed payloads come through row_to_json, which renders
		// timestamps as ISO 8601 strings.
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rowTimePtr(row ports.Row, key string) *time.Time {
	if row[key] == nil {
		return nil
	}
	t := rowTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func rowString(row ports.Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// SessionFromRow maps a court_sessions row into the model.
func SessionFromRow(row ports.Row) (*models.Session, error) {
	id, err := rowUUID(row, "id")
	if err != nil {
		return nil, err
	}
	caseID, err := rowUUID(row, "case_id")
	if err != nil {
		return nil, err
	}
	judgeID, err := rowUUID(row, "judge_id")
	if err != nil {
		return nil, err
	}

	return &models.Session{
		ID:        id,
		CaseID:    caseID,
		JudgeID:   judgeID,
		Status:    models.SessionStatus(rowString(row, "status")),
		StartedAt: rowTime(row, "started_at"),
		EndedAt:   rowTimePtr(row, "ended_at"),
		Notes:     rowString(row, "notes"),
		CreatedAt: rowTime(row, "created_at"),
		UpdatedAt: rowTime(row, "updated_at"),
	}, nil
}

// PermissionFromRow maps a permission_requests row into the model.
func PermissionFromRow(row ports.Row) (*models.PermissionRequest, error) {
	id, err := rowUUID(row, "id")
	if err != nil {
		return nil, err
	}
	sessionID, err := rowUUID(row, "session_id")
	if err != nil {
		return nil, err
	}
	caseID, err := rowUUID(row, "case_id")
	if err != nil {
		return nil, err
	}
	requesterID, err := rowUUID(row, "requester_id")
	if err != nil {
		return nil, err
	}

	return &models.PermissionRequest{
		ID:          id,
		SessionID:   sessionID,
		CaseID:      caseID,
		RequesterID: requesterID,
		Status:      models.PermissionStatus(rowString(row, "status")),
		RequestedAt: rowTime(row, "requested_at"),
		RespondedAt: rowTimePtr(row, "responded_at"),
		RespondedBy: rowUUIDPtr(row, "responded_by"),
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}, nil
}
