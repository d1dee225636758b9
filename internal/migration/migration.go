package migration

import (
	"context"

	"courtflow/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createProfilesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create profiles table")
	}

	if err := r.createCasesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create cases table")
	}

	if err := r.createSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create court_sessions table")
	}

	if err := r.createPermissionRequestsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create permission_requests table")
	}

	if err := r.createDiaryTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create case_diary table")
	}

	if err := r.createEvidenceTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create evidence table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.createChangeFeedTriggers(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create change feed triggers")
	}

	return nil
}

func (r *MigrationRunner) createProfilesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			role VARCHAR(30) NOT NULL CHECK (role IN ('judge', 'practitioner', 'public')),
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createCasesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cases (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			court_id UUID NOT NULL,
			case_number VARCHAR(100) UNIQUE NOT NULL,
			title TEXT NOT NULL,
			judge_id UUID NOT NULL REFERENCES profiles(id),
			status VARCHAR(30) NOT NULL DEFAULT 'filed',
			filed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS court_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			judge_id UUID NOT NULL REFERENCES profiles(id),
			status VARCHAR(30) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'paused', 'ended')),
			started_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			ended_at TIMESTAMP WITH TIME ZONE,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createPermissionRequestsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS permission_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES court_sessions(id) ON DELETE CASCADE,
			case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			requester_id UUID NOT NULL REFERENCES profiles(id),
			status VARCHAR(30) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'granted', 'denied', 'expired')),
			requested_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			responded_at TIMESTAMP WITH TIME ZONE,
			responded_by UUID REFERENCES profiles(id),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createDiaryTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS case_diary (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			action VARCHAR(50) NOT NULL,
			actor_id UUID NOT NULL,
			details JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createEvidenceTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evidence (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			session_id UUID REFERENCES court_sessions(id),
			uploader_id UUID NOT NULL REFERENCES profiles(id),
			title TEXT NOT NULL,
			filename TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			content_type VARCHAR(255) NOT NULL DEFAULT 'application/octet-stream',
			size_bytes BIGINT NOT NULL DEFAULT 0,
			sealed BOOLEAN NOT NULL DEFAULT false,
			sealed_at TIMESTAMP WITH TIME ZONE,
			sealed_by UUID REFERENCES profiles(id),
			uploaded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		// Backstop for the one-active-session invariant. The coordinator
		// still pre-checks and surfaces SESSION_ALREADY_ACTIVE without a
		// write; this index catches the two-judge race the pre-check cannot.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_case
			ON court_sessions (case_id) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_case_started ON court_sessions (case_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_permissions_case ON permission_requests (case_id, requested_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_permissions_session_status ON permission_requests (session_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_diary_case ON case_diary (case_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence (case_id, uploaded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// createChangeFeedTriggers installs pg_notify triggers on the two tables
// the realtime feed watches. Every insert/update reaches the feed channel
// regardless of which process performed the write, which is what lets two
// independent clients converge without a shared process.
func (r *MigrationRunner) createChangeFeedTriggers(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE OR REPLACE FUNCTION notify_case_change() RETURNS trigger AS $$
		DECLARE
			payload JSON;
		BEGIN
			payload = json_build_object(
				'table', TG_TABLE_NAME,
				'type', CASE TG_OP WHEN 'INSERT' THEN 'insert' ELSE 'update' END,
				'row', row_to_json(NEW)
			);
			PERFORM pg_notify('case_changes', payload::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql
	`)
	if err != nil {
		return err
	}

	triggers := []string{
		`DROP TRIGGER IF EXISTS court_sessions_notify ON court_sessions`,
		`CREATE TRIGGER court_sessions_notify
			AFTER INSERT OR UPDATE ON court_sessions
			FOR EACH ROW EXECUTE FUNCTION notify_case_change()`,
		`DROP TRIGGER IF EXISTS permission_requests_notify ON permission_requests`,
		`CREATE TRIGGER permission_requests_notify
			AFTER INSERT OR UPDATE ON permission_requests
			FOR EACH ROW EXECUTE FUNCTION notify_case_change()`,
	}

	for _, stmt := range triggers {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
