package ports

// ChangeEventType distinguishes row inserts from row updates.
type ChangeEventType string

const (
	ChangeInsert ChangeEventType = "insert"
	ChangeUpdate ChangeEventType = "update"
)

// ChangeEvent is one row change delivered by the feed. Delivery is
// at-least-once and ordering across different rows is not guaranteed.
type ChangeEvent struct {
	Type  ChangeEventType
	Table string
	Row   Row
}

// Subscription is a live feed registration. Unsubscribe releases it;
// calling Unsubscribe more than once is harmless.
type Subscription interface {
	Unsubscribe()
}

// ChangeFeed is a subscribable stream of insert/update events per table,
// filterable by one column (in practice always case_id).
type ChangeFeed interface {
	Subscribe(table string, filter Filter, onEvent func(ChangeEvent)) (Subscription, error)
}
