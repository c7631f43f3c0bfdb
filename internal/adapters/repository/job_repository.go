package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/ports"
)

const jobColumns = `id, title, status, deadline, description, color, assigned_team, schedule, todo_list, created_at, updated_at`

// JobRepositoryImpl implements the JobRepository interface
type JobRepositoryImpl struct {
	db *sqlx.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sqlx.DB) ports.JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *entities.Job) error {
	query := `
		INSERT INTO jobs (title, status, deadline, description, color, assigned_team, schedule, todo_list)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		job.Title, job.Status, job.Deadline, job.Description, job.Color,
		toInt64Array(job.AssignedTeam), toStringArray(job.Schedule), todoList(job.TodoList),
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	return nil
}

func (r *JobRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var row jobRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}

	return row.toEntity(), nil
}

func (r *JobRepositoryImpl) Update(ctx context.Context, job *entities.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, status = $3, deadline = $4, description = $5, color = $6,
			assigned_team = $7, schedule = $8, todo_list = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		job.ID, job.Title, job.Status, job.Deadline, job.Description, job.Color,
		toInt64Array(job.AssignedTeam), toStringArray(job.Schedule), todoList(job.TodoList),
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrJobNotFound
		}
		return fmt.Errorf("update job: %w", err)
	}

	return nil
}

func (r *JobRepositoryImpl) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrJobNotFound
	}

	return nil
}

func (r *JobRepositoryImpl) List(ctx context.Context, filter ports.JobFilter) ([]*entities.Job, error) {
	query, args := buildJobListQuery(filter)

	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]*entities.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toEntity())
	}
	return jobs, nil
}

func buildJobListQuery(filter ports.JobFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Day != nil {
		add("$%d = ANY(schedule)", string(*filter.Day))
	}
	if filter.MemberID != nil {
		add("$%d = ANY(assigned_team)", *filter.MemberID)
	}
	if filter.DeadlineMin != nil {
		add("deadline >= $%d", string(*filter.DeadlineMin))
	}
	if filter.DeadlineMax != nil {
		add("deadline <= $%d", string(*filter.DeadlineMax))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`
	return query, args
}
