package alerting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRuleRepository is a PostgreSQL implementation of RuleRepository.
type PostgresRuleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRuleRepository creates a new PostgreSQL rule repository.
func NewPostgresRuleRepository(pool *pgxpool.Pool) *PostgresRuleRepository {
	return &PostgresRuleRepository{pool: pool}
}

const ruleColumns = `
	id, category, building_id, metric, operator, threshold, unit, severity,
	active, channel_sms, channel_email, channel_system, created_at, updated_at
`

func scanRule(row pgx.Row) (*ThresholdRule, error) {
	var r ThresholdRule
	err := row.Scan(
		&r.ID, &r.Category, &r.BuildingID, &r.Metric, &r.Operator,
		&r.Threshold, &r.Unit, &r.Severity, &r.Active,
		&r.Channels.SMS, &r.Channels.Email, &r.Channels.System,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Get retrieves a rule by ID.
func (r *PostgresRuleRepository) Get(ctx context.Context, id string) (*ThresholdRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM threshold_rules WHERE id = $1`
	return scanRule(r.pool.QueryRow(ctx, query, id))
}

// List retrieves all rules, newest first.
func (r *PostgresRuleRepository) List(ctx context.Context) ([]*ThresholdRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM threshold_rules ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ThresholdRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ListActiveFor retrieves active rules matching a building and metric. Rules
// with an empty building apply to every building.
func (r *PostgresRuleRepository) ListActiveFor(ctx context.Context, buildingID, metric string) ([]*ThresholdRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM threshold_rules
		WHERE active AND metric = $1 AND (building_id = '' OR building_id = $2)
	`

	rows, err := r.pool.Query(ctx, query, metric, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ThresholdRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// Create persists a new rule.
func (r *PostgresRuleRepository) Create(ctx context.Context, rule *ThresholdRule) error {
	query := `
		INSERT INTO threshold_rules (
			id, category, building_id, metric, operator, threshold, unit,
			severity, active, channel_sms, channel_email, channel_system,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		rule.ID, rule.Category, rule.BuildingID, rule.Metric, rule.Operator,
		rule.Threshold, rule.Unit, rule.Severity, rule.Active,
		rule.Channels.SMS, rule.Channels.Email, rule.Channels.System,
		rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

// Update replaces an existing rule.
func (r *PostgresRuleRepository) Update(ctx context.Context, rule *ThresholdRule) error {
	query := `
		UPDATE threshold_rules SET
			category = $2, building_id = $3, metric = $4, operator = $5,
			threshold = $6, unit = $7, severity = $8, active = $9,
			channel_sms = $10, channel_email = $11, channel_system = $12,
			updated_at = $13
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		rule.ID, rule.Category, rule.BuildingID, rule.Metric, rule.Operator,
		rule.Threshold, rule.Unit, rule.Severity, rule.Active,
		rule.Channels.SMS, rule.Channels.Email, rule.Channels.System,
		rule.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule.
func (r *PostgresRuleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM threshold_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// PostgresAlertRepository is a PostgreSQL implementation of AlertRepository.
type PostgresAlertRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAlertRepository creates a new PostgreSQL alert repository.
func NewPostgresAlertRepository(pool *pgxpool.Pool) *PostgresAlertRepository {
	return &PostgresAlertRepository{pool: pool}
}

const alertColumns = `
	id, rule_id, source, building_id, metric, value, threshold, unit,
	severity, message, status, channel_sms, channel_email, channel_system,
	created_at, updated_at
`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.RuleID, &a.Source, &a.BuildingID, &a.Metric, &a.Value,
		&a.Threshold, &a.Unit, &a.Severity, &a.Message, &a.Status,
		&a.Channels.SMS, &a.Channels.Email, &a.Channels.System,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Get retrieves an alert by ID.
func (r *PostgresAlertRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return scanAlert(r.pool.QueryRow(ctx, query, id))
}

// List retrieves alerts matching the filter, newest first.
func (r *PostgresAlertRepository) List(ctx context.Context, opts AlertListOptions) ([]*Alert, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	if opts.Status != "" {
		query += ` AND status = ` + next()
		args = append(args, opts.Status)
	}
	if opts.Severity != "" {
		query += ` AND severity = ` + next()
		args = append(args, opts.Severity)
	}
	if opts.BuildingID != "" {
		query += ` AND building_id = ` + next()
		args = append(args, opts.BuildingID)
	}
	if opts.Source != "" {
		query += ` AND source = ` + next()
		args = append(args, opts.Source)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + next()
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

// Create persists a new alert.
func (r *PostgresAlertRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (
			id, rule_id, source, building_id, metric, value, threshold,
			unit, severity, message, status, channel_sms, channel_email,
			channel_system, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.RuleID, a.Source, a.BuildingID, a.Metric, a.Value,
		a.Threshold, a.Unit, a.Severity, a.Message, a.Status,
		a.Channels.SMS, a.Channels.Email, a.Channels.System,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// Update replaces an existing alert.
func (r *PostgresAlertRepository) Update(ctx context.Context, a *Alert) error {
	query := `
		UPDATE alerts SET
			status = $2, message = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, a.ID, a.Status, a.Message, a.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Ensure implementations satisfy the interfaces.
var (
	_ RuleRepository  = (*PostgresRuleRepository)(nil)
	_ AlertRepository = (*PostgresAlertRepository)(nil)
)
