package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL log repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const entryColumns = `
	id, logged_at, direction, source, request_type, endpoint, status,
	status_code, response_time_ms, message, details
`

// Append stores one entry.
func (r *PostgresRepository) Append(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO integration_logs (
			id, logged_at, direction, source, request_type, endpoint, status,
			status_code, response_time_ms, message, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Timestamp, e.Direction, e.Source, e.RequestType, e.Endpoint,
		e.Status, e.StatusCode, e.ResponseTimeMS, e.Message, e.Details,
	)
	return err
}

// Query retrieves entries matching the filter, newest first.
func (r *PostgresRepository) Query(ctx context.Context, opts QueryOptions) ([]*Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + entryColumns + ` FROM integration_logs WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	if opts.Source != "" {
		query += ` AND source = ` + next()
		args = append(args, opts.Source)
	}
	if opts.Status != "" {
		query += ` AND status = ` + next()
		args = append(args, opts.Status)
	}
	if opts.Direction != "" {
		query += ` AND direction = ` + next()
		args = append(args, opts.Direction)
	}
	if !opts.From.IsZero() {
		query += ` AND logged_at >= ` + next()
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		query += ` AND logged_at <= ` + next()
		args = append(args, opts.To)
	}
	query += ` ORDER BY logged_at DESC LIMIT ` + next()
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Direction, &e.Source, &e.RequestType,
			&e.Endpoint, &e.Status, &e.StatusCode, &e.ResponseTimeMS,
			&e.Message, &e.Details,
		); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// PruneBefore deletes entries older than the cutoff.
func (r *PostgresRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM integration_logs WHERE logged_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
