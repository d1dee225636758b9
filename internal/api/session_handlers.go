package api

import (
	"net/http"
	"time"

	"courtflow/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createCaseRequest struct {
	CourtID    uuid.UUID `json:"court_id" binding:"required"`
	CaseNumber string    `json:"case_number" binding:"required"`
	Title      string    `json:"title" binding:"required"`
	JudgeID    uuid.UUID `json:"judge_id" binding:"required"`
}

func (s *Server) handleCreateCase(c *gin.Context) {
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	courtCase := &models.CourtCase{
		ID:         uuid.New(),
		CourtID:    req.CourtID,
		CaseNumber: req.CaseNumber,
		Title:      req.Title,
		JudgeID:    req.JudgeID,
		Status:     models.CaseStatusFiled,
		FiledAt:    now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.cases.CreateCase(c.Request.Context(), courtCase); err != nil {
		respondError(c, err)
		return
	}

	actor := principal(c)
	if err := s.diaryWriter.Append(c.Request.Context(), courtCase.ID, models.DiaryActionCaseCreated, actor.ID, map[string]interface{}{
		"case_number": courtCase.CaseNumber,
	}); err != nil {
		s.logger.Error("diary append for case %s failed: %v", courtCase.ID, err)
	}

	c.JSON(http.StatusCreated, courtCase)
}

func (s *Server) handleGetCase(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	courtCase, err := s.cases.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courtCase)
}

// handleCaseState returns the coordinator's derived view: the active
// session, the permission list, and the canUpload decision for the caller.
func (s *Server) handleCaseState(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"session":     coordinator.ActiveSession(),
		"permissions": coordinator.Permissions(),
		"can_upload":  coordinator.CanUpload(),
	})
}

func (s *Server) handleStartSession(c *gin.Context) {
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

	session, err := coordinator.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type endSessionRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) handleEndSession(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	actor := principal(c)

	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coordinator, err := s.manager.Acquire(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	defer s.manager.Release(id, actor)

	if err := coordinator.EndSession(c.Request.Context(), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleUpdateNotes(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	actor := principal(c)

	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coordinator, err := s.manager.Acquire(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	defer s.manager.Release(id, actor)

	if err := coordinator.UpdateNotes(c.Request.Context(), req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleRequestPermission(c *gin.Context) {
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

	request, created, err := coordinator.RequestPermission(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		// Duplicate request: report the existing one, not an error.
		status = http.StatusOK
	}
	c.JSON(status, request)
}

type respondPermissionRequest struct {
	Decision models.PermissionDecision `json:"decision" binding:"required"`
}

func (s *Server) handleRespondPermission(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	actor := principal(c)

	var req respondPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coordinator, err := s.manager.Acquire(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	defer s.manager.Release(id, actor)

	if err := coordinator.RespondToPermission(c.Request.Context(), requestID, req.Decision); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "responded"})
}

func (s *Server) handleCaseDiary(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	entries, err := s.diaryReader.ListEntries(c.Request.Context(), id, 200)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
