package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"courtflow/models"
)

func endedSession(minutes int) *models.Session {
	now := time.Now().UTC()
	started := now.Add(-time.Duration(minutes) * time.Minute)
	return &models.Session{
		ID:        uuid.New(),
		CaseID:    uuid.New(),
		JudgeID:   uuid.New(),
		Status:    models.SessionStatusEnded,
		StartedAt: started,
		EndedAt:   &now,
	}
}

func TestComputeSessionAnalytics(t *testing.T) {
	sessions := []*models.Session{
		endedSession(30),
		endedSession(60),
		endedSession(90),
	}
	outcomes := []models.PermissionStatus{
		models.PermissionStatusGranted,
		models.PermissionStatusGranted,
		models.PermissionStatusDenied,
		models.PermissionStatusExpired, // not a response, excluded
		models.PermissionStatusPending, // still open, excluded
	}

	result := computeSessionAnalytics(sessions, outcomes)

	assert.Equal(t, 3, result.SessionCount)
	assert.InDelta(t, 60, result.MeanMinutes, 0.01)
	assert.InDelta(t, 60, result.MedianMinutes, 0.01)
	assert.Equal(t, 3, result.RespondedRequests)
	assert.InDelta(t, 2.0/3.0, result.GrantRate, 0.001)
}

func TestComputeSessionAnalytics_Empty(t *testing.T) {
	result := computeSessionAnalytics(nil, nil)

	assert.Equal(t, 0, result.SessionCount)
	assert.Zero(t, result.MeanMinutes)
	assert.Zero(t, result.GrantRate)
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	rendered := string(renderMarkdown("# Ruling\n\n<script>alert(1)</script>\n\n*Adjourned.*"))

	assert.Contains(t, rendered, "<h1")
	assert.Contains(t, rendered, "<em>Adjourned.</em>")
	assert.NotContains(t, rendered, "<script>")
}

func TestFormatDetailsStableOrder(t *testing.T) {
	out := formatDetails(map[string]interface{}{
		"session_id":       "abc",
		"duration_minutes": 47,
	})
	assert.True(t, strings.HasPrefix(out, "duration_minutes=47"))
	assert.Contains(t, out, "session_id=abc")
}
