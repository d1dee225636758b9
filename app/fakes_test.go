package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"courtflow/models"
	"courtflow/ports"

	"github.com/google/uuid"
)

// fakeStore is an in-memory ports.RecordStore. Every confirmed write also
// queues a change event on the attached fakeFeed, which tests flush
// explicitly so the provisional-until-confirmed behavior is observable.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]ports.Row
	feed   *fakeFeed
}

func newFakeStore(feed *fakeFeed) *fakeStore {
	return &fakeStore{
		tables: make(map[string][]ports.Row),
		feed:   feed,
	}
}

func copyRow(row ports.Row) ports.Row {
	copied := make(ports.Row, len(row))
	for k, v := range row {
		copied[k] = v
	}
	return copied
}

func matches(row ports.Row, filters []ports.Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(row[f.Column]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func (s *fakeStore) Insert(_ context.Context, table string, fields ports.Row) (ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := copyRow(fields)
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.New()
	}
	now := time.Now().UTC()
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	if _, ok := row["updated_at"]; !ok {
		row["updated_at"] = now
	}
	s.tables[table] = append(s.tables[table], row)

	s.feed.queue(ports.ChangeEvent{Type: ports.ChangeInsert, Table: table, Row: copyRow(row)})
	return copyRow(row), nil
}

func (s *fakeStore) Update(ctx context.Context, table string, id interface{}, patch ports.Row) error {
	_, err := s.UpdateWhere(ctx, table, []ports.Filter{{Column: "id", Value: id}}, patch)
	return err
}

func (s *fakeStore) UpdateWhere(_ context.Context, table string, filters []ports.Filter, patch ports.Row) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, row := range s.tables[table] {
		if !matches(row, filters) {
			continue
		}
		for k, v := range patch {
			row[k] = v
		}
		affected++
		s.feed.queue(ports.ChangeEvent{Type: ports.ChangeUpdate, Table: table, Row: copyRow(row)})
	}
	return affected, nil
}

func (s *fakeStore) Query(_ context.Context, table string, filters []ports.Filter, order *ports.Order, limit int) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []ports.Row
	for _, row := range s.tables[table] {
		if matches(row, filters) {
			results = append(results, copyRow(row))
		}
	}

	if order != nil {
		sort.SliceStable(results, func(i, j int) bool {
			less := lessValue(results[i][order.Column], results[j][order.Column])
			if order.Descending {
				return !less
			}
			return less
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func lessValue(a, b interface{}) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Before(bt)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func (s *fakeStore) count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

func (s *fakeStore) rows(table string) []ports.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]ports.Row, len(s.tables[table]))
	for i, row := range s.tables[table] {
		result[i] = copyRow(row)
	}
	return result
}

// fakeFeed is a shared in-memory change feed. Events queue until the test
// calls deliverAll, which mimics the realtime gap between a confirmed
// write and its feed delivery.
type fakeFeed struct {
	mu      sync.Mutex
	subs    []*fakeSub
	pending []ports.ChangeEvent
}

type fakeSub struct {
	table   string
	filter  ports.Filter
	onEvent func(ports.ChangeEvent)
	feed    *fakeFeed
	removed bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{}
}

func (f *fakeFeed) Subscribe(table string, filter ports.Filter, onEvent func(ports.ChangeEvent)) (ports.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{table: table, filter: filter, onEvent: onEvent, feed: f}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (s *fakeSub) Unsubscribe() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.removed = true
}

func (f *fakeFeed) queue(event ports.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, event)
}

func (f *fakeFeed) deliverAll() {
	f.mu.Lock()
	events := f.pending
	f.pending = nil
	subs := make([]*fakeSub, 0, len(f.subs))
	for _, sub := range f.subs {
		if !sub.removed {
			subs = append(subs, sub)
		}
	}
	f.mu.Unlock()

	for _, event := range events {
		for _, sub := range subs {
			if sub.table != event.Table {
				continue
			}
			if fmt.Sprint(event.Row[sub.filter.Column]) != fmt.Sprint(sub.filter.Value) {
				continue
			}
			sub.onEvent(event)
		}
	}
}

// fakeDiary records appended entries in order.
type fakeDiary struct {
	mu      sync.Mutex
	entries []models.DiaryEntry
}

func (d *fakeDiary) Append(_ context.Context, caseID uuid.UUID, action models.DiaryAction, actorID uuid.UUID, details map[string]interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, models.DiaryEntry{
		ID:        uuid.New(),
		CaseID:    caseID,
		Action:    action,
		ActorID:   actorID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (d *fakeDiary) byAction(action models.DiaryAction) []models.DiaryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []models.DiaryEntry
	for _, e := range d.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}
