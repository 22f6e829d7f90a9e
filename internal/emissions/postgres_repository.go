package emissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Uniqueness is enforced by a unique index on
// (building_id, data_type, report_date).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL emissions repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `
	id, building_id, data_type, value, unit, measured_at, report_date,
	notes, created_at
`

const insertRecord = `
	INSERT INTO emission_records (
		id, building_id, data_type, value, unit, measured_at, report_date,
		notes, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Get retrieves a record by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM emission_records WHERE id = $1`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.BuildingID,
		&rec.DataType,
		&rec.Value,
		&rec.Unit,
		&rec.Timestamp,
		&rec.ReportDate,
		&rec.Notes,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a record exists for the uniqueness key.
func (r *PostgresRepository) Exists(ctx context.Context, key Key) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM emission_records
			WHERE building_id = $1 AND data_type = $2 AND report_date = $3
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, key.BuildingID, key.DataType, key.ReportDate).Scan(&exists)
	return exists, err
}

// Create persists a single record.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	_, err := r.pool.Exec(ctx, insertRecord,
		rec.ID, rec.BuildingID, rec.DataType, rec.Value, rec.Unit,
		rec.Timestamp, rec.ReportDate, rec.Notes, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateRecord
	}
	return err
}

// CreateBatch persists all records or none, inside a single transaction.
func (r *PostgresRepository) CreateBatch(ctx context.Context, records []*Record) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecord,
			rec.ID, rec.BuildingID, rec.DataType, rec.Value, rec.Unit,
			rec.Timestamp, rec.ReportDate, rec.Notes, rec.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if isUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// List retrieves records matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + recordColumns + ` FROM emission_records WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	if opts.BuildingID != "" {
		query += ` AND building_id = ` + next()
		args = append(args, opts.BuildingID)
	}
	if opts.DataType != "" {
		query += ` AND data_type = ` + next()
		args = append(args, opts.DataType)
	}
	if !opts.From.IsZero() {
		query += ` AND measured_at >= ` + next()
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		query += ` AND measured_at <= ` + next()
		args = append(args, opts.To)
	}
	query += ` ORDER BY measured_at DESC LIMIT ` + next()
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.BuildingID, &rec.DataType, &rec.Value, &rec.Unit,
			&rec.Timestamp, &rec.ReportDate, &rec.Notes, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
