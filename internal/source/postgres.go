package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 4

// identPattern restricts table and column names to plain SQL
// identifiers; queries are assembled from config-supplied names, not
// end-user input, but the source should still refuse anything odd.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresSource implements RowSource directly against the Postgres
// database behind the hosted REST layer, using LIMIT/OFFSET paging.
// Useful when opsboard runs next to the database and the REST hop is
// pure overhead.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a pooled Postgres-backed RowSource.
func NewPostgresSource(ctx context.Context, connString string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FetchRange implements RowSource. Ordering by the first projected
// column keeps LIMIT/OFFSET pages stable across round-trips.
func (s *PostgresSource) FetchRange(
	ctx context.Context,
	q Query,
	offset, limit int,
) ([]Row, error) {
	sql, err := buildRangeSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", q.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]Row, 0, limit)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row values: %w", err)
		}

		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", q.Table, err)
	}

	return out, nil
}

func buildRangeSQL(q Query) (string, error) {
	if !identPattern.MatchString(q.Table) {
		return "", fmt.Errorf("invalid table name %q", q.Table)
	}

	cols := "*"
	orderBy := "1"
	if len(q.Columns) > 0 {
		for _, c := range q.Columns {
			if !identPattern.MatchString(c) {
				return "", fmt.Errorf("invalid column name %q", c)
			}
		}
		cols = strings.Join(q.Columns, ", ")
		orderBy = q.Columns[0]
	}

	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2",
		cols, q.Table, orderBy,
	), nil
}
