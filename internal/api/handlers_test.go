package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"courtflow/app"
	"courtflow/internal/errors"
	"courtflow/models"
	"courtflow/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is a minimal in-memory SessionRepository for handler tests.
type memRepo struct {
	mu       sync.Mutex
	sessions []*models.Session
	perms    []*models.PermissionRequest
}

func (r *memRepo) FindActiveSession(_ context.Context, caseID uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.CaseID == caseID && s.Status == models.SessionStatusActive {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memRepo) CreateSession(_ context.Context, caseID, judgeID uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := models.NewSession(caseID, judgeID)
	r.sessions = append(r.sessions, s)
	copied := *s
	return &copied, nil
}

func (r *memRepo) UpdateSession(_ context.Context, sessionID uuid.UUID, patch models.SessionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == sessionID {
			if patch.Status != nil {
				s.Status = *patch.Status
			}
			if patch.EndedAt != nil {
				s.EndedAt = patch.EndedAt
			}
			if patch.Notes != nil {
				s.Notes = *patch.Notes
			}
			return nil
		}
	}
	return errors.NotFound("session")
}

func (r *memRepo) ListPermissions(_ context.Context, caseID uuid.UUID, sessionID *uuid.UUID) ([]*models.PermissionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.PermissionRequest
	for _, p := range r.perms {
		if p.CaseID != caseID {
			continue
		}
		if sessionID != nil && p.SessionID != *sessionID {
			continue
		}
		copied := *p
		result = append(result, &copied)
	}
	return result, nil
}

func (r *memRepo) CreatePermissionRequest(_ context.Context, sessionID, caseID, requesterID uuid.UUID) (*models.PermissionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := models.NewPermissionRequest(sessionID, caseID, requesterID)
	r.perms = append(r.perms, p)
	copied := *p
	return &copied, nil
}

func (r *memRepo) UpdatePermissionRequest(_ context.Context, requestID uuid.UUID, patch models.PermissionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.ID == requestID {
			if patch.Status != nil {
				p.Status = *patch.Status
			}
			if patch.RespondedAt != nil {
				p.RespondedAt = patch.RespondedAt
			}
			if patch.RespondedBy != nil {
				p.RespondedBy = patch.RespondedBy
			}
			return nil
		}
	}
	return errors.NotFound("permission request")
}

func (r *memRepo) ExpirePendingPermissions(_ context.Context, sessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.perms {
		if p.SessionID == sessionID && p.Status == models.PermissionStatusPending {
			p.Status = models.PermissionStatusExpired
			n++
		}
	}
	return n, nil
}

type memCaseRepo struct {
	courtCase *models.CourtCase
}

func (r *memCaseRepo) GetCase(_ context.Context, caseID uuid.UUID) (*models.CourtCase, error) {
	if r.courtCase != nil && r.courtCase.ID == caseID {
		copied := *r.courtCase
		return &copied, nil
	}
	return nil, errors.NotFound("case")
}

func (r *memCaseRepo) CreateCase(_ context.Context, c *models.CourtCase) error {
	r.courtCase = c
	return nil
}

func (r *memCaseRepo) ListCasesByCourt(context.Context, uuid.UUID, int) ([]*models.CourtCase, error) {
	return nil, nil
}

func (r *memCaseRepo) ListEndedSessions(context.Context, uuid.UUID) ([]*models.Session, error) {
	return nil, nil
}

func (r *memCaseRepo) ListPermissionOutcomes(context.Context, uuid.UUID) ([]models.PermissionStatus, error) {
	return nil, nil
}

type memEvidenceRepo struct {
	mu    sync.Mutex
	items []*models.Evidence
}

func (r *memEvidenceRepo) CreateEvidence(_ context.Context, e *models.Evidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, e)
	return nil
}

func (r *memEvidenceRepo) GetEvidence(_ context.Context, id uuid.UUID) (*models.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.NotFound("evidence")
}

func (r *memEvidenceRepo) ListEvidence(context.Context, uuid.UUID) ([]*models.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items, nil
}

func (r *memEvidenceRepo) SealEvidence(_ context.Context, id, judgeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ID == id && !e.Sealed {
			now := time.Now().UTC()
			e.Sealed = true
			e.SealedAt = &now
			e.SealedBy = &judgeID
			return nil
		}
	}
	return errors.NotFound("unsealed evidence")
}

type noopDiary struct{}

func (noopDiary) Append(context.Context, uuid.UUID, models.DiaryAction, uuid.UUID, map[string]interface{}) error {
	return nil
}

func (noopDiary) ListEntries(context.Context, uuid.UUID, int) ([]*models.DiaryEntry, error) {
	return nil, nil
}

type noopFeed struct{}

type noopSub struct{}

func (noopSub) Unsubscribe() {}

func (noopFeed) Subscribe(string, ports.Filter, func(ports.ChangeEvent)) (ports.Subscription, error) {
	return noopSub{}, nil
}

type memObjects struct{}

func (memObjects) NewStorageKey(_ context.Context, caseID, filename string) (string, error) {
	return "cases/" + caseID + "/" + filename, nil
}

func (memObjects) SignedURL(_ context.Context, key string) (string, error) {
	return "http://objects.local/" + key, nil
}

type apiHarness struct {
	server    *Server
	courtCase *models.CourtCase
	judge     models.Principal
	lawyer    models.Principal
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	judgeID := uuid.New()
	courtCase := &models.CourtCase{
		ID:         uuid.New(),
		CourtID:    uuid.New(),
		CaseNumber: "CIV-2025-0077",
		Title:      "Mensah v. Quartey Holdings",
		JudgeID:    judgeID,
		Status:     models.CaseStatusHearing,
	}

	manager := app.NewCoordinatorManager(&memCaseRepo{courtCase: courtCase}, &memRepo{}, noopDiary{}, noopFeed{})
	server := NewServer(manager, &memCaseRepo{courtCase: courtCase}, &memEvidenceRepo{}, noopDiary{}, noopDiary{}, memObjects{})

	return &apiHarness{
		server:    server,
		courtCase: courtCase,
		judge:     models.Principal{ID: judgeID, Name: "Justice Adjei", Role: models.RoleJudge},
		lawyer:    models.Principal{ID: uuid.New(), Name: "Adv. Boateng", Role: models.RolePractitioner},
	}
}

func (h *apiHarness) do(t *testing.T, actor models.Principal, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actor.ID.String())
	req.Header.Set("X-Actor-Role", string(actor.Role))
	req.Header.Set("X-Actor-Name", actor.Name)

	recorder := httptest.NewRecorder()
	h.server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestUploadGateWorkflow(t *testing.T) {
	h := newAPIHarness(t)
	base := "/api/cases/" + h.courtCase.ID.String()

	// No session yet: the practitioner cannot submit evidence.
	resp := h.do(t, h.lawyer, http.MethodPost, base+"/evidence", gin.H{
		"title": "Exhibit A", "filename": "exhibit-a.pdf",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The judge may, session or not.
	resp = h.do(t, h.judge, http.MethodPost, base+"/evidence", gin.H{
		"title": "Bench memo", "filename": "memo.pdf",
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	// Only the judge can open a session.
	resp = h.do(t, h.lawyer, http.MethodPost, base+"/session/start", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = h.do(t, h.judge, http.MethodPost, base+"/session/start", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	// Second start is rejected as a conflict.
	resp = h.do(t, h.judge, http.MethodPost, base+"/session/start", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Practitioner requests permission; still gated until granted.
	resp = h.do(t, h.lawyer, http.MethodPost, base+"/permissions", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var request models.PermissionRequest
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &request))

	resp = h.do(t, h.lawyer, http.MethodPost, base+"/evidence", gin.H{
		"title": "Exhibit A", "filename": "exhibit-a.pdf",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// A repeat request reports the existing one instead of duplicating.
	resp = h.do(t, h.lawyer, http.MethodPost, base+"/permissions", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Judge grants; the gate opens.
	resp = h.do(t, h.judge, http.MethodPost, base+"/permissions/"+request.ID.String()+"/respond", gin.H{"decision": "grant"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = h.do(t, h.lawyer, http.MethodPost, base+"/evidence", gin.H{
		"title": "Exhibit A", "filename": "exhibit-a.pdf",
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var state struct {
		CanUpload bool `json:"can_upload"`
	}
	resp = h.do(t, h.lawyer, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.True(t, state.CanUpload)

	// Ending the session closes the gate for the practitioner again.
	resp = h.do(t, h.judge, http.MethodPost, base+"/session/end", gin.H{"notes": "Hearing concluded."})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = h.do(t, h.lawyer, http.MethodPost, base+"/evidence", gin.H{
		"title": "Exhibit B", "filename": "exhibit-b.pdf",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestSealEvidenceRequiresJudge(t *testing.T) {
	h := newAPIHarness(t)
	base := "/api/cases/" + h.courtCase.ID.String()

	resp := h.do(t, h.judge, http.MethodPost, base+"/evidence", gin.H{
		"title": "Exhibit C", "filename": "exhibit-c.pdf",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var evidence models.Evidence
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &evidence))

	resp = h.do(t, h.lawyer, http.MethodPost, base+"/evidence/"+evidence.ID.String()+"/seal", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = h.do(t, h.judge, http.MethodPost, base+"/evidence/"+evidence.ID.String()+"/seal", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Sealing is one-way; a second seal finds nothing to flip.
	resp = h.do(t, h.judge, http.MethodPost, base+"/evidence/"+evidence.ID.String()+"/seal", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateNotesEndpoint(t *testing.T) {
	h := newAPIHarness(t)
	base := "/api/cases/" + h.courtCase.ID.String()

	// No active session to annotate.
	resp := h.do(t, h.judge, http.MethodPut, base+"/session/notes", gin.H{"notes": "premature"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = h.do(t, h.judge, http.MethodPost, base+"/session/start", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = h.do(t, h.lawyer, http.MethodPut, base+"/session/notes", gin.H{"notes": "not my record"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	notes := "Recess until 14:00; counsel to file written submissions."
	resp = h.do(t, h.judge, http.MethodPut, base+"/session/notes", gin.H{"notes": notes})
	require.Equal(t, http.StatusOK, resp.Code)

	var state struct {
		Session *models.Session `json:"session"`
	}
	resp = h.do(t, h.judge, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	require.NotNil(t, state.Session)
	assert.Equal(t, notes, state.Session.Notes)
}

func TestRequirePrincipal(t *testing.T) {
	h := newAPIHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/"+h.courtCase.ID.String(), nil)
	recorder := httptest.NewRecorder()
	h.server.Router().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	req.Header.Set("X-Actor-ID", uuid.NewString())
	req.Header.Set("X-Actor-Role", "registrar")
	recorder = httptest.NewRecorder()
	h.server.Router().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
