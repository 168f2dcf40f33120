package source

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/opsboard/opsboard/internal/metrics"
)

const (
	defaultPageSize = 10000
	defaultRowCap   = 140000
)

// Fetcher pulls an entire table/view into memory through repeated
// fixed-size range requests. One fetch sequence runs per dashboard
// load; any page error aborts the sequence and the caller keeps
// nothing of the partial result.
type Fetcher struct {
	source   RowSource
	logger   *log.Logger
	pageSize int
	rowCap   int
}

// FetcherOption configures the Fetcher.
type FetcherOption func(*Fetcher)

// WithPageSize overrides the default page size.
func WithPageSize(n int) FetcherOption {
	return func(f *Fetcher) {
		f.pageSize = n
	}
}

// WithRowCap overrides the default safety row cap.
func WithRowCap(n int) FetcherOption {
	return func(f *Fetcher) {
		f.rowCap = n
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher over the given source.
func NewFetcher(src RowSource, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:   src,
		pageSize: defaultPageSize,
		rowCap:   defaultRowCap,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult holds the outcome of a full paginated load.
type FetchResult struct {
	Rows      []Row
	Pages     int
	StoppedAt string // "end_of_data", "row_cap"
}

// FetchAll retrieves all rows for the query, starting at offset 0 and
// advancing by page size, until a short page signals end of data or
// the accumulated row count reaches the safety cap. The context is
// checked between round-trips, so a torn-down caller cancels the
// remaining pages instead of fetching into the void.
func (f *Fetcher) FetchAll(ctx context.Context, q Query) (*FetchResult, error) {
	result := &FetchResult{}

	for offset := 0; ; offset += f.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch canceled at offset %d: %w", offset, err)
		}

		page, err := f.source.FetchRange(ctx, q, offset, f.pageSize)
		if err != nil {
			metrics.FetchErrorsTotal.Inc()
			return nil, fmt.Errorf("fetching %s at offset %d: %w", q.Table, offset, err)
		}

		result.Pages++
		result.Rows = append(result.Rows, page...)
		metrics.FetchPagesTotal.Inc()
		metrics.FetchRowsTotal.Add(float64(len(page)))

		if len(result.Rows) >= f.rowCap {
			result.Rows = result.Rows[:f.rowCap]
			result.StoppedAt = "row_cap"

			if f.logger != nil {
				f.logger.Warn(
					"row cap reached",
					"table", q.Table,
					"cap", f.rowCap,
					"pages", result.Pages,
				)
			}
			return result, nil
		}

		if len(page) < f.pageSize {
			result.StoppedAt = "end_of_data"

			if f.logger != nil {
				f.logger.Debug(
					"fetch complete",
					"table", q.Table,
					"rows", len(result.Rows),
					"pages", result.Pages,
				)
			}
			return result, nil
		}
	}
}
