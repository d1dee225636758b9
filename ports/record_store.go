package ports

import (
	"context"
)

// Row is a generic record returned by the store.
type Row map[string]interface{}

// Filter narrows a query to rows whose column equals the given value.
type Filter struct {
	Column string
	Value  interface{}
}

// Order sorts a query result by one column.
type Order struct {
	Column     string
	Descending bool
}

// RecordStore is the generic persistence boundary. Every call is attributed
// to the authenticated principal carried in ctx, and the store may reject
// any operation with an authorization error independent of application-level
// checks; the coordinator's role checks are a UX affordance, not the
// security boundary.
type RecordStore interface {
	// Insert writes a new row and returns it as stored.
	Insert(ctx context.Context, table string, fields Row) (Row, error)

	// Update applies a partial patch to one row by id.
	Update(ctx context.Context, table string, id interface{}, patch Row) error

	// UpdateWhere applies a patch to every row matching all filters and
	// returns the number of rows touched.
	UpdateWhere(ctx context.Context, table string, filters []Filter, patch Row) (int64, error)

	// Query reads rows matching all filters, ordered and limited.
	// A zero limit means no limit.
	Query(ctx context.Context, table string, filters []Filter, order *Order, limit int) ([]Row, error)
}
