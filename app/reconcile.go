package app

import (
	"context"
	"time"

	"courtflow/adapters/records"
	"courtflow/models"
	"courtflow/ports"
)

// enqueue is the feed callback. It never blocks the feed's dispatch
// goroutine: when the intake buffer is full the event is dropped, which is
// safe because every reconcile step reloads authoritative state rather
// than applying deltas.
func (c *SessionCoordinator) enqueue(event ports.ChangeEvent) {
	select {
	case c.intake <- event:
	default:
		c.logger.Warn("intake full, dropping %s event for case %s", event.Table, c.courtCase.ID)
	}
}

// reconcileLoop drains the intake channel one event at a time. This is the
// only goroutine that mutates state from feed input, so two back-to-back
// deliveries can never reconcile concurrently.
func (c *SessionCoordinator) reconcileLoop(ctx context.Context) {
	for {
		select {
		case event := <-c.intake:
			switch event.Table {
			case tableSessions:
				c.reconcileSession(ctx, event)
			case tablePermissions:
				c.reconcilePermissions(ctx, event)
			}
		case <-ctx.Done():
			return
		}
	}
}

// reconcileSession applies an authoritative session row delivered by the
// feed. The coordinator's own writes are provisional until this happens.
func (c *SessionCoordinator) reconcileSession(ctx context.Context, event ports.ChangeEvent) {
	session, err := records.SessionFromRow(event.Row)
	if err != nil {
		c.logger.Error("unmappable session row in feed event: %v", err)
		return
	}

	switch session.Status {
	case models.SessionStatusActive:
		permissions, err := c.repo.ListPermissions(ctx, c.courtCase.ID, &session.ID)
		if err != nil {
			c.logger.Error("failed to reload permissions for session %s: %v", session.ID, err)
			permissions = nil
		}

		c.mu.Lock()
		c.session = session
		c.permissions = permissions
		startedByOther := session.JudgeID != c.principal.ID
		c.mu.Unlock()

		if startedByOther {
			c.emit(Notice{Kind: NoticeSessionStarted, CaseID: c.courtCase.ID, SessionID: session.ID})
		}

	case models.SessionStatusEnded:
		c.mu.Lock()
		hadSession := c.session != nil && c.session.ID == session.ID
		if hadSession {
			c.session = nil
			c.permissions = nil
		}
		c.mu.Unlock()

		if hadSession && !c.principal.IsJudge() {
			c.emit(Notice{Kind: NoticeSessionEnded, CaseID: c.courtCase.ID, SessionID: session.ID})
		}

	case models.SessionStatusPaused:
		// No transition reaches paused today; ignore rather than guess.
	}
}

// reconcilePermissions reloads the full permission list for the active
// session, then raises the signals relevant to this principal.
func (c *SessionCoordinator) reconcilePermissions(ctx context.Context, event ports.ChangeEvent) {
	request, err := records.PermissionFromRow(event.Row)
	if err != nil {
		c.logger.Error("unmappable permission row in feed event: %v", err)
		return
	}

	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session != nil {
		permissions, err := c.repo.ListPermissions(ctx, c.courtCase.ID, &session.ID)
		if err != nil {
			c.logger.Error("failed to reload permissions: %v", err)
		} else {
			c.mu.Lock()
			c.permissions = permissions
			c.mu.Unlock()
		}
	}

	switch event.Type {
	case ports.ChangeInsert:
		if c.principal.IsJudge() {
			c.emit(Notice{Kind: NoticePermissionRequested, CaseID: c.courtCase.ID, SessionID: request.SessionID, RequestID: request.ID})
		}
	case ports.ChangeUpdate:
		if request.RequesterID != c.principal.ID {
			return
		}
		switch request.Status {
		case models.PermissionStatusGranted:
			c.emit(Notice{Kind: NoticePermissionGranted, CaseID: c.courtCase.ID, SessionID: request.SessionID, RequestID: request.ID})
		case models.PermissionStatusDenied:
			c.emit(Notice{Kind: NoticePermissionDenied, CaseID: c.courtCase.ID, SessionID: request.SessionID, RequestID: request.ID})
		}
	}
}

// emit fans the notice out to every subscriber. Sends never block the
// reconcile goroutine; a consumer that stops draining loses notices, not
// state, because state is always read back through the getters.
func (c *SessionCoordinator) emit(notice Notice) {
	notice.Timestamp = time.Now().UTC()

	c.noticeMu.Lock()
	channels := make([]chan Notice, 0, len(c.noticeSubs))
	for _, ch := range c.noticeSubs {
		channels = append(channels, ch)
	}
	c.noticeMu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- notice:
		default:
			c.logger.Warn("notice buffer full, dropping %s for case %s", notice.Kind, notice.CaseID)
		}
	}
}
