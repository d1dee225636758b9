package api

import (
	"courtflow/app"
	"courtflow/internal"
	"courtflow/ports"

	"github.com/gin-gonic/gin"
)

// Server is the court API surface: session lifecycle, permission workflow,
// evidence gating and the per-case SSE stream.
type Server struct {
	router      *gin.Engine
	manager     *app.CoordinatorManager
	cases       ports.CaseRepository
	evidence    ports.EvidenceRepository
	diaryWriter ports.DiaryWriter
	diaryReader ports.DiaryReader
	objects     ports.ObjectStore
	logger      *internal.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(manager *app.CoordinatorManager, cases ports.CaseRepository, evidence ports.EvidenceRepository, diaryWriter ports.DiaryWriter, diaryReader ports.DiaryReader, objects ports.ObjectStore) *Server {
	s := &Server{
		router:      gin.Default(),
		manager:     manager,
		cases:       cases,
		evidence:    evidence,
		diaryWriter: diaryWriter,
		diaryReader: diaryReader,
		objects:     objects,
		logger:      internal.NewDefaultLogger("api"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api", s.requirePrincipal())

	api.POST("/cases", s.handleCreateCase)
	api.GET("/cases/:caseID", s.handleGetCase)
	api.GET("/cases/:caseID/state", s.handleCaseState)
	api.GET("/cases/:caseID/events", s.handleCaseEvents)

	api.POST("/cases/:caseID/session/start", s.handleStartSession)
	api.POST("/cases/:caseID/session/end", s.handleEndSession)
	api.PUT("/cases/:caseID/session/notes", s.handleUpdateNotes)

	api.POST("/cases/:caseID/permissions", s.handleRequestPermission)
	api.POST("/cases/:caseID/permissions/:requestID/respond", s.handleRespondPermission)

	api.GET("/cases/:caseID/evidence", s.handleListEvidence)
	api.POST("/cases/:caseID/evidence", s.handleSubmitEvidence)
	api.POST("/cases/:caseID/evidence/:evidenceID/seal", s.handleSealEvidence)

	api.GET("/cases/:caseID/diary", s.handleCaseDiary)
}

// Router exposes the underlying engine for tests and for main.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}
