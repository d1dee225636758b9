package ui

import (
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"

	"courtflow/models"
)

const diaryPageLimit = 500

func (a *App) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.render(w, "index.html", nil)
}

func (a *App) handleCourtCases(w http.ResponseWriter, r *http.Request) {
	courtID, ok := parseIDParam(w, r, "courtID")
	if !ok {
		return
	}

	cases, err := a.cases.ListCasesByCourt(r.Context(), courtID, 200)
	if err != nil {
		a.logger.Error("list cases for court %s: %v", courtID, err)
		http.Error(w, "failed to load cases", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, map[string]interface{}{"cases": cases})
		return
	}
	a.render(w, "cases.html", map[string]interface{}{
		"CourtID": courtID.String(),
		"Cases":   cases,
	})
}

type diaryRow struct {
	When    string
	Action  models.DiaryAction
	ActorID string
	Details string
}

func (a *App) handleCaseDiary(w http.ResponseWriter, r *http.Request) {
	caseID, ok := parseIDParam(w, r, "caseID")
	if !ok {
		return
	}

	entries, err := a.diary.ListEntries(r.Context(), caseID, diaryPageLimit)
	if err != nil {
		a.logger.Error("list diary for case %s: %v", caseID, err)
		http.Error(w, "failed to load diary", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, map[string]interface{}{"entries": entries})
		return
	}

	rows := make([]diaryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, diaryRow{
			When:    e.CreatedAt.Format("2006-01-02 15:04:05"),
			Action:  e.Action,
			ActorID: e.ActorID.String(),
			Details: formatDetails(e.Details),
		})
	}
	a.render(w, "diary.html", map[string]interface{}{
		"CaseID":  caseID.String(),
		"Entries": rows,
	})
}

// handleCourtNotes renders the notes of every ended session under a court.
// Notes are authored as markdown by the judge and rendered here.
func (a *App) handleCourtNotes(w http.ResponseWriter, r *http.Request) {
	courtID, ok := parseIDParam(w, r, "courtID")
	if !ok {
		return
	}

	sessions, err := a.cases.ListEndedSessions(r.Context(), courtID)
	if err != nil {
		a.logger.Error("list ended sessions for court %s: %v", courtID, err)
		http.Error(w, "failed to load sessions", http.StatusInternalServerError)
		return
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	type noteView struct {
		CaseID    string
		SessionID string
		StartedAt string
		Rendered  template.HTML
	}
	notes := make([]noteView, 0, len(sessions))
	for _, s := range sessions {
		if strings.TrimSpace(s.Notes) == "" {
			continue
		}
		notes = append(notes, noteView{
			CaseID:    s.CaseID.String(),
			SessionID: s.ID.String(),
			StartedAt: s.StartedAt.Format("2006-01-02 15:04"),
			Rendered:  renderMarkdown(s.Notes),
		})
	}

	a.render(w, "notes.html", map[string]interface{}{
		"CourtID": courtID.String(),
		"Notes":   notes,
	})
}

// renderMarkdown converts judge-authored markdown to HTML. The renderer
// escapes raw HTML blocks, so note content cannot inject script.
func renderMarkdown(source string) template.HTML {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	doc := p.Parse([]byte(source))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	return template.HTML(markdown.Render(doc, renderer))
}

func formatDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		data, err := json.Marshal(details[k])
		if err != nil {
			continue
		}
		parts = append(parts, k+"="+strings.Trim(string(data), `"`))
	}
	return strings.Join(parts, " ")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
