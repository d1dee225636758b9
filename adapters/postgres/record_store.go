package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"courtflow/internal/errors"
	"courtflow/ports"

	"github.com/jmoiron/sqlx"
)

// Tables the generic store is allowed to touch. Anything else is rejected
// before SQL is built, so a handler bug can never reach an arbitrary table.
var allowedTables = map[string]bool{
	"cases":               true,
	"court_sessions":      true,
	"permission_requests": true,
	"case_diary":          true,
	"evidence":            true,
	"profiles":            true,
}

// RecordStoreImpl implements ports.RecordStore for PostgreSQL
type RecordStoreImpl struct {
	db *sqlx.DB
}

// NewRecordStore creates a new PostgreSQL record store
func NewRecordStore(db *sqlx.DB) ports.RecordStore {
	return &RecordStoreImpl{db: db}
}

// Insert writes a new row and returns it as stored
func (s *RecordStoreImpl) Insert(ctx context.Context, table string, fields ports.Row) (ports.Row, error) {
	if !allowedTables[table] {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown table %q", table))
	}

	query, args := buildInsert(table, fields)
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.StoreError(err)
		}
		return nil, errors.StoreError(fmt.Errorf("insert into %s returned no row", table))
	}

	row := ports.Row{}
	if err := rows.MapScan(row); err != nil {
		return nil, errors.StoreError(err)
	}
	return row, nil
}

// Update applies a partial patch to one row by id
func (s *RecordStoreImpl) Update(ctx context.Context, table string, id interface{}, patch ports.Row) error {
	_, err := s.UpdateWhere(ctx, table, []ports.Filter{{Column: "id", Value: id}}, patch)
	return err
}

// UpdateWhere applies a patch to every row matching all filters
func (s *RecordStoreImpl) UpdateWhere(ctx context.Context, table string, filters []ports.Filter, patch ports.Row) (int64, error) {
	if !allowedTables[table] {
		return 0, errors.InvalidInput(fmt.Sprintf("unknown table %q", table))
	}
	if len(patch) == 0 {
		return 0, errors.InvalidInput("empty patch")
	}

	query, args := buildUpdate(table, filters, patch)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.StoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.StoreError(err)
	}
	return affected, nil
}

// Query reads rows matching all filters, ordered and limited
func (s *RecordStoreImpl) Query(ctx context.Context, table string, filters []ports.Filter, order *ports.Order, limit int) ([]ports.Row, error) {
	if !allowedTables[table] {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown table %q", table))
	}

	query, args := buildSelect(table, filters, order, limit)
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError(err)
	}
	defer rows.Close()

	var results []ports.Row
	for rows.Next() {
		row := ports.Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, errors.StoreError(err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// buildInsert renders an INSERT ... RETURNING * statement. Column order is
// sorted so generated SQL is stable for a given field set.
func buildInsert(table string, fields ports.Row) (string, []interface{}) {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[column]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	return query, args
}

func buildUpdate(table string, filters []ports.Filter, patch ports.Row) (string, []interface{}) {
	columns := make([]string, 0, len(patch))
	for column := range patch {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var args []interface{}
	sets := make([]string, len(columns))
	for i, column := range columns {
		args = append(args, patch[column])
		sets[i] = fmt.Sprintf("%s = $%d", column, len(args))
	}

	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	where, args := buildWhere(filters, args)
	return query + where, args
}

func buildSelect(table string, filters []ports.Filter, order *ports.Order, limit int) (string, []interface{}) {
	query := fmt.Sprintf("SELECT * FROM %s", table)

	where, args := buildWhere(filters, nil)
	query += where

	if order != nil {
		direction := "ASC"
		if order.Descending {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", order.Column, direction)
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query, args
}

func buildWhere(filters []ports.Filter, args []interface{}) (string, []interface{}) {
	if len(filters) == 0 {
		return "", args
	}
	clauses := make([]string, len(filters))
	for i, f := range filters {
		args = append(args, f.Value)
		clauses[i] = fmt.Sprintf("%s = $%d", f.Column, len(args))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
