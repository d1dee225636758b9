package ui

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courtflow/internal"
	"courtflow/ports"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App is the read-only registry viewer: case lists, the case diary, session
// analytics and the diary export. It never writes; all mutation goes through
// the API surface.
type App struct {
	router    *chi.Mux
	cases     ports.CaseRepository
	diary     ports.DiaryReader
	templates *template.Template
	logger    *internal.Logger
}

// NewApp creates the viewer application.
func NewApp(cases ports.CaseRepository, diary ports.DiaryReader) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"f1":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		cases:     cases,
		diary:     diary,
		templates: templates,
		logger:    internal.NewDefaultLogger("diaryview"),
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/courts/{courtID}/cases", a.handleCourtCases)
	a.router.Get("/courts/{courtID}/analytics", a.handleCourtAnalytics)
	a.router.Get("/courts/{courtID}/notes", a.handleCourtNotes)
	a.router.Get("/cases/{caseID}/diary", a.handleCaseDiary)
	a.router.Get("/cases/{caseID}/diary.xlsx", a.handleDiaryExport)
}

// Router exposes the chi mux for main and for tests.
func (a *App) Router() *chi.Mux {
	return a.router
}
