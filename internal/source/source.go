// Package source provides access to the hosted row store: a paged
// row-retrieval interface over a named table/view, a PostgREST-style
// HTTP implementation, a direct Postgres implementation, and the bulk
// Fetcher that pages through an entire table into memory.
package source

import (
	"context"
)

// Row is one remote record: a flat mapping of column name to value.
// Values may be null, numeric-as-string, or well-formed
// numeric/boolean/date-string; nothing past this boundary trusts them.
type Row map[string]any

// Query names a remote table/view and the column projection to pull.
type Query struct {
	Table   string
	Columns []string
}

// RowSource fetches one page of rows for the inclusive range
// [offset, offset+limit-1]. A short or empty page signals end of data.
// No filtering, sorting, or aggregation is pushed to the source.
type RowSource interface {
	FetchRange(ctx context.Context, q Query, offset, limit int) ([]Row, error)
}
