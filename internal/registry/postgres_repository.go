package registry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBuildingRepository is a PostgreSQL implementation of BuildingRepository.
type PostgresBuildingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBuildingRepository creates a new PostgreSQL building repository.
func NewPostgresBuildingRepository(pool *pgxpool.Pool) *PostgresBuildingRepository {
	return &PostgresBuildingRepository{pool: pool}
}

const buildingColumns = `
	id, code, name, type, area_m2, organization, lat, lon, status,
	created_at, updated_at
`

// GetByCode retrieves a building by its unique code.
func (r *PostgresBuildingRepository) GetByCode(ctx context.Context, code string) (*Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE code = $1`
	return r.scanBuilding(ctx, query, code)
}

// Get retrieves a building by ID.
func (r *PostgresBuildingRepository) Get(ctx context.Context, id string) (*Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE id = $1`
	return r.scanBuilding(ctx, query, id)
}

func (r *PostgresBuildingRepository) scanBuilding(ctx context.Context, query string, args ...interface{}) (*Building, error) {
	var b Building
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID,
		&b.Code,
		&b.Name,
		&b.Type,
		&b.AreaM2,
		&b.Organization,
		&b.Lat,
		&b.Lon,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List retrieves all buildings, optionally filtered by organization.
func (r *PostgresBuildingRepository) List(ctx context.Context, organization string) ([]*Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings ORDER BY code`
	args := []interface{}{}
	if organization != "" {
		query = `SELECT ` + buildingColumns + ` FROM buildings WHERE organization = $1 ORDER BY code`
		args = append(args, organization)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Building
	for rows.Next() {
		var b Building
		if err := rows.Scan(
			&b.ID, &b.Code, &b.Name, &b.Type, &b.AreaM2, &b.Organization,
			&b.Lat, &b.Lon, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// Create registers a new building.
func (r *PostgresBuildingRepository) Create(ctx context.Context, b *Building) error {
	query := `
		INSERT INTO buildings (
			id, code, name, type, area_m2, organization, lat, lon, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.Code, b.Name, b.Type, b.AreaM2, b.Organization,
		b.Lat, b.Lon, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// Update replaces an existing building.
func (r *PostgresBuildingRepository) Update(ctx context.Context, b *Building) error {
	query := `
		UPDATE buildings
		SET code = $2, name = $3, type = $4, area_m2 = $5, organization = $6,
			lat = $7, lon = $8, status = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID, b.Code, b.Name, b.Type, b.AreaM2, b.Organization,
		b.Lat, b.Lon, b.Status, b.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBuildingNotFound
	}
	return nil
}

// PostgresParameterRepository is a PostgreSQL implementation of ParameterRepository.
type PostgresParameterRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParameterRepository creates a new PostgreSQL parameter repository.
func NewPostgresParameterRepository(pool *pgxpool.Pool) *PostgresParameterRepository {
	return &PostgresParameterRepository{pool: pool}
}

const parameterColumns = `
	category, subcategory, name, data_type, units, default_unit,
	upload_requirement, emission_factor
`

// GetByDataType retrieves the parameter definition for a data type.
func (r *PostgresParameterRepository) GetByDataType(ctx context.Context, dataType string) (*Parameter, error) {
	query := `SELECT ` + parameterColumns + ` FROM parameters WHERE data_type = $1`

	var p Parameter
	err := r.pool.QueryRow(ctx, query, dataType).Scan(
		&p.Category,
		&p.Subcategory,
		&p.Name,
		&p.DataType,
		&p.Units,
		&p.DefaultUnit,
		&p.UploadRequirement,
		&p.EmissionFactor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParameterNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List retrieves all parameter definitions.
func (r *PostgresParameterRepository) List(ctx context.Context) ([]*Parameter, error) {
	query := `SELECT ` + parameterColumns + ` FROM parameters ORDER BY data_type`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Parameter
	for rows.Next() {
		var p Parameter
		if err := rows.Scan(
			&p.Category, &p.Subcategory, &p.Name, &p.DataType, &p.Units,
			&p.DefaultUnit, &p.UploadRequirement, &p.EmissionFactor,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ BuildingRepository  = (*PostgresBuildingRepository)(nil)
	_ ParameterRepository = (*PostgresParameterRepository)(nil)
)
