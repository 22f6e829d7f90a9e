package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL task repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const taskColumns = `
	id, title, description, alert_id, assignee, due_date, status, progress,
	created_at, updated_at
`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AlertID, &t.Assignee,
		&t.DueDate, &t.Status, &t.Progress, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Get retrieves a task by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

// List retrieves tasks matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Task, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
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
	if opts.Assignee != "" {
		query += ` AND assignee = ` + next()
		args = append(args, opts.Assignee)
	}
	if opts.AlertID != "" {
		query += ` AND alert_id = ` + next()
		args = append(args, opts.AlertID)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + next()
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create persists a new task.
func (r *PostgresRepository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (
			id, title, description, alert_id, assignee, due_date, status,
			progress, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.AlertID, t.Assignee, t.DueDate,
		t.Status, t.Progress, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Update replaces an existing task.
func (r *PostgresRepository) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, assignee = $4, due_date = $5,
			status = $6, progress = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Assignee, t.DueDate,
		t.Status, t.Progress, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AppendFeedback stores one feedback entry.
func (r *PostgresRepository) AppendFeedback(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO task_feedback (
			id, task_id, author, content, progress, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		f.ID, f.TaskID, f.Author, f.Content, f.Progress, f.CreatedAt,
	)
	return err
}

// ListFeedback retrieves a task's feedback, oldest first.
func (r *PostgresRepository) ListFeedback(ctx context.Context, taskID string) ([]*Feedback, error) {
	query := `
		SELECT id, task_id, author, content, progress, created_at
		FROM task_feedback
		WHERE task_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.TaskID, &f.Author, &f.Content, &f.Progress, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// ListDueBefore retrieves non-terminal tasks with a due date before the
// cutoff.
func (r *PostgresRepository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE due_date < $1 AND status IN ($2, $3)
	`

	rows, err := r.pool.Query(ctx, query, cutoff, StatusPending, StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
