package container

import (
	"fmt"

	"courtflow/adapters/objstore"
	"courtflow/adapters/postgres"
	"courtflow/adapters/records"
	"courtflow/app"
	"courtflow/internal/api"
	"courtflow/internal/config"
	"courtflow/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RecordStore  ports.RecordStore
	SessionRepo  ports.SessionRepository
	CaseRepo     ports.CaseRepository
	EvidenceRepo ports.EvidenceRepository
	DiaryRepo    *postgres.DiaryRepository
	ObjectStore  ports.ObjectStore

	// Realtime components
	ChangeFeed *postgres.ChangeFeedImpl
	Manager    *app.CoordinatorManager

	// HTTP surface
	Server *api.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()
	c.initRealtime()
	c.Server = api.NewServer(c.Manager, c.CaseRepo, c.EvidenceRepo, c.DiaryRepo, c.DiaryRepo, c.ObjectStore)
	return nil
}

func (c *Container) initRepositories() {
	c.RecordStore = postgres.NewRecordStore(c.DB)
	c.SessionRepo = records.NewSessionRepository(c.RecordStore)
	c.CaseRepo = postgres.NewCaseRepository(c.DB)
	c.EvidenceRepo = postgres.NewEvidenceRepository(c.DB)
	c.DiaryRepo = postgres.NewDiaryRepository(c.DB)
	c.ObjectStore = objstore.NewLocalObjectStore("/objects")
}

func (c *Container) initRealtime() {
	c.ChangeFeed = postgres.NewChangeFeed(
		c.Config.Database.URL,
		c.Config.Feed.Channel,
		c.Config.Feed.MinReconnect,
		c.Config.Feed.MaxReconnect,
	)
	c.Manager = app.NewCoordinatorManager(c.CaseRepo, c.SessionRepo, c.DiaryRepo, c.ChangeFeed)
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
