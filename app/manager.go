package app

import (
	"context"
	"fmt"
	"sync"

	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
)

// CoordinatorManager hands out session coordinators scoped to a (case,
// principal) pair. Coordinators are shared between concurrent consumers of
// the same scope and refcounted, so the feed subscription exists exactly
// once per scope and is released when the last consumer lets go.
type CoordinatorManager struct {
	cases ports.CaseRepository
	repo  ports.SessionRepository
	diary ports.DiaryWriter
	feed  ports.ChangeFeed

	mu      sync.Mutex
	entries map[string]*managedCoordinator
}

type managedCoordinator struct {
	coordinator *SessionCoordinator
	refs        int
}

// NewCoordinatorManager creates a coordinator manager.
func NewCoordinatorManager(cases ports.CaseRepository, repo ports.SessionRepository, diary ports.DiaryWriter, feed ports.ChangeFeed) *CoordinatorManager {
	return &CoordinatorManager{
		cases:   cases,
		repo:    repo,
		diary:   diary,
		feed:    feed,
		entries: make(map[string]*managedCoordinator),
	}
}

func scopeKey(caseID, principalID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", caseID, principalID)
}

// Acquire returns the coordinator for (caseID, principal), constructing it
// on first use. Every Acquire must be paired with one Release.
func (m *CoordinatorManager) Acquire(ctx context.Context, caseID uuid.UUID, principal models.Principal) (*SessionCoordinator, error) {
	key := scopeKey(caseID, principal.ID)

	m.mu.Lock()
	if entry, ok := m.entries[key]; ok {
		entry.refs++
		m.mu.Unlock()
		return entry.coordinator, nil
	}
	m.mu.Unlock()

	courtCase, err := m.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	coordinator, err := NewSessionCoordinator(ctx, courtCase, principal, m.repo, m.diary, m.feed)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another consumer may have built the scope while we were loading.
	if entry, ok := m.entries[key]; ok {
		entry.refs++
		coordinator.Close()
		return entry.coordinator, nil
	}

	m.entries[key] = &managedCoordinator{coordinator: coordinator, refs: 1}
	return coordinator, nil
}

// Release drops one reference; the coordinator is closed and forgotten
// when the last reference goes.
func (m *CoordinatorManager) Release(caseID uuid.UUID, principal models.Principal) {
	key := scopeKey(caseID, principal.ID)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		entry.coordinator.Close()
		delete(m.entries, key)
	}
}
