package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"courtflow/internal"
	"courtflow/ports"

	"github.com/lib/pq"
)

// notifyPayload is the JSON the notify_case_change trigger emits.
type notifyPayload struct {
	Table string                 `json:"table"`
	Type  ports.ChangeEventType  `json:"type"`
	Row   map[string]interface{} `json:"row"`
}

// ChangeFeedImpl delivers row changes through Postgres LISTEN/NOTIFY, so
// writes made by any process reach every subscribed process. Delivery is
// at-least-once from the subscriber's point of view; ordering across
// different rows is whatever the server produces.
type ChangeFeedImpl struct {
	listener *pq.Listener
	channel  string
	logger   *internal.Logger

	mu     sync.RWMutex
	subs   map[int64]*feedSubscription
	nextID int64
}

type feedSubscription struct {
	id      int64
	table   string
	filter  ports.Filter
	onEvent func(ports.ChangeEvent)
	feed    *ChangeFeedImpl
	once    sync.Once
}

// Unsubscribe releases the registration. Safe to call more than once.
func (s *feedSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
	})
}

// NewChangeFeed creates a LISTEN/NOTIFY-backed change feed. The channel
// must match the one the migration's triggers notify on.
func NewChangeFeed(connStr, channel string, minReconnect, maxReconnect time.Duration) *ChangeFeedImpl {
	feed := &ChangeFeedImpl{
		channel: channel,
		logger:  internal.NewDefaultLogger("feed"),
		subs:    make(map[int64]*feedSubscription),
	}

	feed.listener = pq.NewListener(connStr, minReconnect, maxReconnect, func(event pq.ListenerEventType, err error) {
		if err != nil {
			feed.logger.Error("listener event %d: %v", event, err)
		}
	})

	return feed
}

// Run listens on the feed channel and dispatches notifications until ctx
// is cancelled. A reconnect (nil notification) means notifications may
// have been missed; subscribers reconcile by reloading, so a warning is
// all that happens here.
func (f *ChangeFeedImpl) Run(ctx context.Context) error {
	if err := f.listener.Listen(f.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.channel, err)
	}
	defer f.listener.Close()

	f.logger.Info("listening on channel %s", f.channel)

	for {
		select {
		case notification := <-f.listener.Notify:
			if notification == nil {
				f.logger.Warn("connection re-established, notifications may have been dropped")
				continue
			}
			f.dispatch(notification.Extra)

		case <-time.After(90 * time.Second):
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.logger.Error("listener ping failed: %v", err)
				}
			}()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers a handler for changes to one table, narrowed by one
// column (in practice always case_id).
func (f *ChangeFeedImpl) Subscribe(table string, filter ports.Filter, onEvent func(ports.ChangeEvent)) (ports.Subscription, error) {
	if onEvent == nil {
		return nil, fmt.Errorf("onEvent handler is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	sub := &feedSubscription{
		id:      f.nextID,
		table:   table,
		filter:  filter,
		onEvent: onEvent,
		feed:    f,
	}
	f.subs[sub.id] = sub
	return sub, nil
}

func (f *ChangeFeedImpl) dispatch(raw string) {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		f.logger.Error("malformed notification payload: %v", err)
		return
	}

	event := ports.ChangeEvent{
		Type:  payload.Type,
		Table: payload.Table,
		Row:   ports.Row(payload.Row),
	}

	f.mu.RLock()
	matched := make([]*feedSubscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.table != payload.Table {
			continue
		}
		// JSON row values are strings; filter values may be uuid.UUID.
		if fmt.Sprint(payload.Row[sub.filter.Column]) != fmt.Sprint(sub.filter.Value) {
			continue
		}
		matched = append(matched, sub)
	}
	f.mu.RUnlock()

	for _, sub := range matched {
		sub.onEvent(event)
	}
}
