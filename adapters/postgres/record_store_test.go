package postgres

import (
	"testing"

	"courtflow/ports"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name      string
		filters   []ports.Filter
		order     *ports.Order
		limit     int
		wantSQL   string
		wantArgs  int
	}{
		{
			name:     "no filters",
			wantSQL:  "SELECT * FROM court_sessions",
			wantArgs: 0,
		},
		{
			name:     "single filter with order and limit",
			filters:  []ports.Filter{{Column: "case_id", Value: "c1"}},
			order:    &ports.Order{Column: "started_at", Descending: true},
			limit:    1,
			wantSQL:  "SELECT * FROM court_sessions WHERE case_id = $1 ORDER BY started_at DESC LIMIT 1",
			wantArgs: 1,
		},
		{
			name: "two filters ascending",
			filters: []ports.Filter{
				{Column: "session_id", Value: "s1"},
				{Column: "status", Value: "pending"},
			},
			order:    &ports.Order{Column: "requested_at"},
			wantSQL:  "SELECT * FROM court_sessions WHERE session_id = $1 AND status = $2 ORDER BY requested_at ASC",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildSelect("court_sessions", tt.filters, tt.order, tt.limit)
			if sql != tt.wantSQL {
				t.Errorf("buildSelect() sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("buildSelect() args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestBuildUpdate(t *testing.T) {
	sql, args := buildUpdate("permission_requests",
		[]ports.Filter{{Column: "session_id", Value: "s1"}, {Column: "status", Value: "pending"}},
		ports.Row{"status": "expired", "updated_at": "now"},
	)

	// Patch columns are sorted, so the statement is deterministic.
	want := "UPDATE permission_requests SET status = $1, updated_at = $2 WHERE session_id = $3 AND status = $4"
	if sql != want {
		t.Errorf("buildUpdate() sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Errorf("buildUpdate() args = %d, want 4", len(args))
	}
}

func TestBuildInsert(t *testing.T) {
	sql, args := buildInsert("case_diary", ports.Row{
		"case_id": "c1",
		"action":  "SESSION_START",
	})

	want := "INSERT INTO case_diary (action, case_id) VALUES ($1, $2) RETURNING *"
	if sql != want {
		t.Errorf("buildInsert() sql = %q, want %q", sql, want)
	}
	if args[0] != "SESSION_START" || args[1] != "c1" {
		t.Errorf("buildInsert() args out of order: %v", args)
	}
}
