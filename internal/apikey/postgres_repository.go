package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL key repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const keyColumns = `
	id, name, prefix, secret_hash, permissions, status, created_at, last_used_at
`

// Get retrieves a key by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE id = $1`
	return r.scanKey(ctx, query, id)
}

// GetByPrefix retrieves a key by its secret prefix.
func (r *PostgresRepository) GetByPrefix(ctx context.Context, prefix string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE prefix = $1`
	return r.scanKey(ctx, query, prefix)
}

func (r *PostgresRepository) scanKey(ctx context.Context, query string, args ...interface{}) (*Key, error) {
	var k Key
	var perms []string
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&k.ID,
		&k.Name,
		&k.Prefix,
		&k.SecretHash,
		&perms,
		&k.Status,
		&k.CreatedAt,
		&k.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	for _, p := range perms {
		k.Permissions = append(k.Permissions, Permission(p))
	}
	return &k, nil
}

// List retrieves all keys, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Key
	for rows.Next() {
		var k Key
		var perms []string
		if err := rows.Scan(
			&k.ID, &k.Name, &k.Prefix, &k.SecretHash, &perms,
			&k.Status, &k.CreatedAt, &k.LastUsedAt,
		); err != nil {
			return nil, err
		}
		for _, p := range perms {
			k.Permissions = append(k.Permissions, Permission(p))
		}
		out = append(out, &k)
	}
	return out, rows.Err()
}

// Create persists a new key.
func (r *PostgresRepository) Create(ctx context.Context, k *Key) error {
	query := `
		INSERT INTO api_keys (
			id, name, prefix, secret_hash, permissions, status, created_at, last_used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	perms := make([]string, 0, len(k.Permissions))
	for _, p := range k.Permissions {
		perms = append(perms, string(p))
	}
	_, err := r.pool.Exec(ctx, query,
		k.ID, k.Name, k.Prefix, k.SecretHash, perms, k.Status, k.CreatedAt, k.LastUsedAt,
	)
	return err
}

// UpdateStatus sets the status of a key.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE api_keys SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// TouchLastUsed records a successful authentication.
func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
