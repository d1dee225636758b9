package api

import (
	"net/http"

	"courtflow/internal/errors"
	"courtflow/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submitEvidenceRequest struct {
	Title       string `json:"title" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// handleSubmitEvidence records evidence metadata. The coordinator's
// canUpload decision is the single gate consulted before the workspace may
// submit; the record store still checks row authorization on the insert.
func (s *Server) handleSubmitEvidence(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	actor := principal(c)

	var req submitEvidenceRequest
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

	if !coordinator.CanUpload() {
		respondError(c, errors.Unauthorized("no upload permission for this case right now"))
		return
	}

	storageKey, err := s.objects.NewStorageKey(c.Request.Context(), id.String(), req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	var sessionID *uuid.UUID
	if session := coordinator.ActiveSession(); session != nil {
		sessionID = &session.ID
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	evidence := models.NewEvidence(id, actor.ID, sessionID, req.Title, req.Filename, contentType, req.SizeBytes)
	evidence.StorageKey = storageKey

	if err := s.evidence.CreateEvidence(c.Request.Context(), evidence); err != nil {
		respondError(c, err)
		return
	}

	if err := s.diaryWriter.Append(c.Request.Context(), id, models.DiaryActionEvidenceSubmitted, actor.ID, map[string]interface{}{
		"evidence_id": evidence.ID.String(),
		"filename":    evidence.Filename,
	}); err != nil {
		s.logger.Error("diary append for evidence %s failed: %v", evidence.ID, err)
	}

	c.JSON(http.StatusCreated, evidence)
}

func (s *Server) handleListEvidence(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	items, err := s.evidence.ListEvidence(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	type evidenceWithURL struct {
		*models.Evidence
		DownloadURL string `json:"download_url,omitempty"`
	}

	result := make([]evidenceWithURL, 0, len(items))
	for _, item := range items {
		entry := evidenceWithURL{Evidence: item}
		if url, err := s.objects.SignedURL(c.Request.Context(), item.StorageKey); err == nil {
			entry.DownloadURL = url
		}
		result = append(result, entry)
	}
	c.JSON(http.StatusOK, gin.H{"evidence": result})
}

// handleSealEvidence flips the sealed flag. Sealing is the judge's act and
// one-way; the audit entry is what makes it meaningful.
func (s *Server) handleSealEvidence(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}
	evidenceID, err := uuid.Parse(c.Param("evidenceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evidence id"})
		return
	}
	actor := principal(c)

	courtCase, err := s.cases.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !actor.IsJudge() || actor.ID != courtCase.JudgeID {
		respondError(c, errors.Unauthorized("only the assigned judge may seal evidence"))
		return
	}

	if err := s.evidence.SealEvidence(c.Request.Context(), evidenceID, actor.ID); err != nil {
		respondError(c, err)
		return
	}

	if err := s.diaryWriter.Append(c.Request.Context(), id, models.DiaryActionEvidenceSealed, actor.ID, map[string]interface{}{
		"evidence_id": evidenceID.String(),
	}); err != nil {
		s.logger.Error("diary append for seal of %s failed: %v", evidenceID, err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "sealed"})
}
