package ui

import (
	"net/http"
	"time"

	"github.com/montanaflynn/stats"

	"courtflow/models"
)

// SessionAnalytics summarizes the hearing activity of one court.
type SessionAnalytics struct {
	SessionCount      int     `json:"session_count"`
	MeanMinutes       float64 `json:"mean_minutes"`
	MedianMinutes     float64 `json:"median_minutes"`
	P90Minutes        float64 `json:"p90_minutes"`
	RespondedRequests int     `json:"responded_requests"`
	GrantRate         float64 `json:"grant_rate"`
}

// computeSessionAnalytics reduces ended sessions and permission outcomes to
// summary figures. A court with fewer than one session yields zeros rather
// than an error.
func computeSessionAnalytics(sessions []*models.Session, outcomes []models.PermissionStatus) SessionAnalytics {
	result := SessionAnalytics{SessionCount: len(sessions)}

	if len(sessions) > 0 {
		now := time.Now().UTC()
		durations := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			durations = append(durations, float64(s.DurationMinutes(now)))
		}
		result.MeanMinutes, _ = stats.Mean(durations)
		result.MedianMinutes, _ = stats.Median(durations)
		result.P90Minutes, _ = stats.Percentile(durations, 90)
	}

	granted := 0
	for _, outcome := range outcomes {
		switch outcome {
		case models.PermissionStatusGranted:
			granted++
			result.RespondedRequests++
		case models.PermissionStatusDenied:
			result.RespondedRequests++
		}
	}
	if result.RespondedRequests > 0 {
		result.GrantRate = float64(granted) / float64(result.RespondedRequests)
	}
	return result
}

func (a *App) handleCourtAnalytics(w http.ResponseWriter, r *http.Request) {
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
	outcomes, err := a.cases.ListPermissionOutcomes(r.Context(), courtID)
	if err != nil {
		a.logger.Error("list permission outcomes for court %s: %v", courtID, err)
		http.Error(w, "failed to load permission outcomes", http.StatusInternalServerError)
		return
	}

	analytics := computeSessionAnalytics(sessions, outcomes)

	if wantsJSON(r) {
		writeJSON(w, analytics)
		return
	}
	a.render(w, "analytics.html", map[string]interface{}{
		"CourtID":   courtID.String(),
		"Analytics": analytics,
	})
}
