package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleCaseEvents streams coordinator notices for one case to the caller
// over Server-Sent Events. Each connection registers its own notice
// subscription, so several connections over the same shared coordinator
// each see the full stream; disconnecting releases the subscription and
// the coordinator reference.
func (s *Server) handleCaseEvents(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	actor := principal(c)

	coordinator, err := s.manager.Acquire(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	defer s.manager.Release(id, actor)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	notices, cancelSub := coordinator.SubscribeNotices()
	defer cancelSub()

	c.Stream(func(w io.Writer) bool {
		select {
		case notice := <-notices:
			payload, err := json.Marshal(notice)
			if err != nil {
				s.logger.Error("failed to marshal notice: %v", err)
				return true
			}
			c.SSEvent("notice", string(payload))
			return true

		case <-time.After(30 * time.Second):
			// Keep intermediaries from closing an idle stream.
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().UTC().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})

	c.Status(http.StatusOK)
}
