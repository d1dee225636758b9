package app

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"courtflow/internal"
	"courtflow/internal/errors"
	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
)

const (
	tableSessions    = "court_sessions"
	tablePermissions = "permission_requests"

	intakeBuffer = 64
	noticeBuffer = 32
)

// NoticeKind identifies the informational signal a coordinator emits when
// state changes underneath its principal.
type NoticeKind string

const (
	NoticeSessionStarted      NoticeKind = "session_started"
	NoticeSessionEnded        NoticeKind = "session_ended"
	NoticePermissionRequested NoticeKind = "permission_requested"
	NoticePermissionGranted   NoticeKind = "permission_granted"
	NoticePermissionDenied    NoticeKind = "permission_denied"
)

// Notice is a lightweight signal for the consuming view. Notices carry no
// authority; state is always read back through the coordinator's getters.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	CaseID    uuid.UUID  `json:"case_id"`
	SessionID uuid.UUID  `json:"session_id,omitempty"`
	RequestID uuid.UUID  `json:"request_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// SessionCoordinator owns the session/permission state for one case as
// seen by one principal. It executes the state-machine transitions,
// derives the upload-authorization decision, and reconciles its state from
// the change feed.
//
// Local writes are provisional: in-memory state advances only after the
// repository confirms a write, and the authoritative copy is replaced
// again when the matching feed event arrives. Feed events enter a single
// intake channel drained by one goroutine, so no two events are ever
// reconciled concurrently.
type SessionCoordinator struct {
	courtCase *models.CourtCase
	principal models.Principal

	repo   ports.SessionRepository
	diary  ports.DiaryWriter
	logger *internal.Logger

	mu          sync.Mutex
	session     *models.Session
	permissions []*models.PermissionRequest

	intake chan ports.ChangeEvent
	subs   []ports.Subscription

	noticeMu     sync.Mutex
	noticeSubs   map[int64]chan Notice
	nextNoticeID int64

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewSessionCoordinator constructs a coordinator scoped to (case,
// principal): loads the active session and its permissions, subscribes to
// the change feed for both watched tables, and starts the reconcile loop.
// The caller must Close() the coordinator when the scope ends.
func NewSessionCoordinator(ctx context.Context, courtCase *models.CourtCase, principal models.Principal, repo ports.SessionRepository, diary ports.DiaryWriter, feed ports.ChangeFeed) (*SessionCoordinator, error) {
	c := &SessionCoordinator{
		courtCase:  courtCase,
		principal:  principal,
		repo:       repo,
		diary:      diary,
		logger:     internal.NewDefaultLogger("coordinator"),
		intake:     make(chan ports.ChangeEvent, intakeBuffer),
		noticeSubs: make(map[int64]chan Notice),
	}

	session, err := repo.FindActiveSession(ctx, courtCase.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active session")
	}
	c.session = session

	if session != nil {
		permissions, err := repo.ListPermissions(ctx, courtCase.ID, &session.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load permissions")
		}
		c.permissions = permissions
	}

	caseFilter := ports.Filter{Column: "case_id", Value: courtCase.ID}
	for _, table := range []string{tableSessions, tablePermissions} {
		sub, err := feed.Subscribe(table, caseFilter, c.enqueue)
		if err != nil {
			c.unsubscribeAll()
			return nil, errors.Wrapf(err, "failed to subscribe to %s", table)
		}
		c.subs = append(c.subs, sub)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.reconcileLoop(loopCtx)

	return c, nil
}

// Close releases the feed subscriptions and stops the reconcile loop.
func (c *SessionCoordinator) Close() {
	c.closeOnce.Do(func() {
		c.unsubscribeAll()
		c.cancel()
	})
}

// SubscribeNotices registers a notice consumer. Each consumer gets its own
// buffered channel, so several views over the same coordinator each see the
// full stream. The returned cancel releases the registration; calling it
// more than once is harmless. Notices emitted before the call are not
// replayed.
func (c *SessionCoordinator) SubscribeNotices() (<-chan Notice, func()) {
	ch := make(chan Notice, noticeBuffer)

	c.noticeMu.Lock()
	c.nextNoticeID++
	id := c.nextNoticeID
	c.noticeSubs[id] = ch
	c.noticeMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.noticeMu.Lock()
			delete(c.noticeSubs, id)
			c.noticeMu.Unlock()
		})
	}
	return ch, cancel
}

// Principal returns the acting identity this coordinator was built for.
func (c *SessionCoordinator) Principal() models.Principal {
	return c.principal
}

// ActiveSession returns a copy of the currently loaded session, or nil.
func (c *SessionCoordinator) ActiveSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

// Permissions returns a snapshot of the loaded permission list.
func (c *SessionCoordinator) Permissions() []*models.PermissionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]*models.PermissionRequest, len(c.permissions))
	for i, r := range c.permissions {
		copied := *r
		snapshot[i] = &copied
	}
	return snapshot
}

// StartSession opens a live session for the case. Judge-only; rejected if
// a session is already active. On success a SESSION_START diary entry is
// appended (best effort).
func (c *SessionCoordinator) StartSession(ctx context.Context) (*models.Session, error) {
	if !c.isCaseJudge() {
		return nil, errors.Unauthorized("only the assigned judge may start a session")
	}

	c.mu.Lock()
	if c.session.IsLive() {
		c.mu.Unlock()
		return nil, errors.SessionAlreadyActive(c.courtCase.ID.String())
	}
	c.mu.Unlock()

	session, err := c.repo.CreateSession(ctx, c.courtCase.ID, c.principal.ID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	loaded := *session
	c.session = &loaded
	c.permissions = nil
	c.mu.Unlock()

	c.appendDiary(ctx, models.DiaryActionSessionStart, map[string]interface{}{
		"session_id": session.ID.String(),
	})

	c.logger.Info("session %s started for case %s", session.ID, c.courtCase.ID)
	return session, nil
}

// EndSession terminates the active session, bulk-expires its pending
// permission requests and appends a SESSION_END diary entry carrying the
// rounded duration. Ended is terminal. If notes is non-nil it replaces the
// session notes as part of the same update.
func (c *SessionCoordinator) EndSession(ctx context.Context, notes *string) error {
	// Snapshot under the lock: UpdateNotes mutates the shared session's
	// notes in place, and the manager shares this coordinator between
	// concurrent consumers of the scope.
	session := c.ActiveSession()

	if !session.IsLive() {
		return errors.NoActiveSession(c.courtCase.ID.String())
	}
	if !c.principal.IsJudge() || c.principal.ID != session.JudgeID {
		return errors.Unauthorized("only the session's judge may end it")
	}

	now := time.Now().UTC()
	ended := models.SessionStatusEnded
	patch := models.SessionPatch{Status: &ended, EndedAt: &now}
	if notes != nil {
		patch.Notes = notes
	}

	if err := c.repo.UpdateSession(ctx, session.ID, patch); err != nil {
		return err
	}

	expired, err := c.repo.ExpirePendingPermissions(ctx, session.ID)
	if err != nil {
		return err
	}

	finalNotes := session.Notes
	if notes != nil {
		finalNotes = *notes
	}
	c.appendDiary(ctx, models.DiaryActionSessionEnd, map[string]interface{}{
		"session_id":       session.ID.String(),
		"duration_minutes": roundMinutes(now.Sub(session.StartedAt)),
		"notes_summary":    summarize(finalNotes),
	})

	c.mu.Lock()
	if c.session != nil && c.session.ID == session.ID {
		c.session = nil
		c.permissions = nil
	}
	c.mu.Unlock()

	c.logger.Info("session %s ended for case %s (%d pending requests expired)", session.ID, c.courtCase.ID, expired)
	return nil
}

// UpdateNotes replaces the notes of the active session. Notes changes are
// not an audited act, so no diary entry is written.
func (c *SessionCoordinator) UpdateNotes(ctx context.Context, notes string) error {
	session := c.ActiveSession()

	if !session.IsLive() {
		return errors.NoActiveSession(c.courtCase.ID.String())
	}
	if !c.principal.IsJudge() || c.principal.ID != session.JudgeID {
		return errors.Unauthorized("only the session's judge may edit notes")
	}

	if err := c.repo.UpdateSession(ctx, session.ID, models.SessionPatch{Notes: &notes}); err != nil {
		return err
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == session.ID {
		c.session.Notes = notes
	}
	c.mu.Unlock()
	return nil
}

// RequestPermission files an upload permission request for the acting
// principal. Idempotent: if the principal already has a pending or granted
// request under the active session, that request is returned unchanged and
// created is false.
func (c *SessionCoordinator) RequestPermission(ctx context.Context) (request *models.PermissionRequest, created bool, err error) {
	if c.principal.IsJudge() {
		return nil, false, errors.Unauthorized("judges do not request upload permission")
	}

	c.mu.Lock()
	var session *models.Session
	if c.session != nil {
		copied := *c.session
		session = &copied
	}
	var existing *models.PermissionRequest
	if open := c.findOwnOpenRequest(); open != nil {
		copied := *open
		existing = &copied
	}
	c.mu.Unlock()

	if !session.IsLive() {
		return nil, false, errors.NoActiveSession(c.courtCase.ID.String())
	}
	if existing != nil {
		c.logger.Debug("duplicate permission request suppressed for %s in session %s", c.principal.ID, session.ID)
		return existing, false, nil
	}

	request, err = c.repo.CreatePermissionRequest(ctx, session.ID, c.courtCase.ID, c.principal.ID)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	loaded := *request
	c.permissions = append([]*models.PermissionRequest{&loaded}, c.permissions...)
	c.mu.Unlock()

	return request, true, nil
}

// RespondToPermission records the judge's grant or deny decision on a
// pending request.
func (c *SessionCoordinator) RespondToPermission(ctx context.Context, requestID uuid.UUID, decision models.PermissionDecision) error {
	c.mu.Lock()
	var session *models.Session
	if c.session != nil {
		copied := *c.session
		session = &copied
	}
	var target *models.PermissionRequest
	for _, r := range c.permissions {
		if r.ID == requestID {
			copied := *r
			target = &copied
			break
		}
	}
	c.mu.Unlock()

	if session == nil || !c.principal.IsJudge() || c.principal.ID != session.JudgeID {
		return errors.Unauthorized("only the session's judge may respond to requests")
	}

	status, ok := decision.Status()
	if !ok {
		return errors.InvalidInput("decision must be grant or deny")
	}
	if target != nil && !target.CanTransitionTo(status) {
		return errors.InvalidInput("request has already been resolved")
	}

	now := time.Now().UTC()
	err := c.repo.UpdatePermissionRequest(ctx, requestID, models.PermissionPatch{
		Status:      &status,
		RespondedAt: &now,
		RespondedBy: &c.principal.ID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	for _, r := range c.permissions {
		if r.ID == requestID {
			r.Status = status
			r.RespondedAt = &now
			respondedBy := c.principal.ID
			r.RespondedBy = &respondedBy
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// CanUpload is the single authorization gate the upload workspace consults.
// True for the case's judge regardless of session state, and for any
// requester holding a granted request under the currently active session.
// This is a UX-layer decision; the record store still enforces the real
// authorization boundary on every write.
func (c *SessionCoordinator) CanUpload() bool {
	if c.isCaseJudge() {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.IsLive() {
		return false
	}
	for _, r := range c.permissions {
		if r.SessionID == c.session.ID &&
			r.RequesterID == c.principal.ID &&
			r.Status == models.PermissionStatusGranted {
			return true
		}
	}
	return false
}

func (c *SessionCoordinator) isCaseJudge() bool {
	return c.principal.IsJudge() && c.principal.ID == c.courtCase.JudgeID
}

// findOwnOpenRequest must be called with c.mu held.
func (c *SessionCoordinator) findOwnOpenRequest() *models.PermissionRequest {
	if c.session == nil {
		return nil
	}
	for _, r := range c.permissions {
		if r.SessionID == c.session.ID && r.RequesterID == c.principal.ID && r.IsOpen() {
			return r
		}
	}
	return nil
}

// appendDiary is fire-and-forget: an audit failure never blocks or rolls
// back the transition that triggered it.
func (c *SessionCoordinator) appendDiary(ctx context.Context, action models.DiaryAction, details map[string]interface{}) {
	if err := c.diary.Append(ctx, c.courtCase.ID, action, c.principal.ID, details); err != nil {
		c.logger.Error("diary append %s failed: %v", action, err)
	}
}

func (c *SessionCoordinator) unsubscribeAll() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
}

func roundMinutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

// summarize caps the notes text carried into the diary payload. The cut is
// made on a rune boundary so the payload is always valid UTF-8.
func summarize(notes string) string {
	const max = 140
	if utf8.RuneCountInString(notes) <= max {
		return notes
	}
	return string([]rune(notes)[:max]) + "…"
}
