package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/amire/crewboard/internal/domain/entities"
)

// uniqueViolation is the Postgres error code for a unique constraint failure.
const uniqueViolation = "23505"

// todoList stores a job's checklist as JSONB.
type todoList []entities.TodoItem

func (t todoList) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]entities.TodoItem(t))
}

func (t *todoList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = todoList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("todo_list: unsupported type %T", src)
	}
	var items []entities.TodoItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("todo_list: %w", err)
	}
	if items == nil {
		items = []entities.TodoItem{}
	}
	*t = items
	return nil
}

type jobRow struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Status       string         `db:"status"`
	Deadline     string         `db:"deadline"`
	Description  string         `db:"description"`
	Color        string         `db:"color"`
	AssignedTeam pq.Int64Array  `db:"assigned_team"`
	Schedule     pq.StringArray `db:"schedule"`
	TodoList     todoList       `db:"todo_list"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r jobRow) toEntity() *entities.Job {
	job := &entities.Job{
		ID:           r.ID,
		Title:        r.Title,
		Status:       entities.JobStatus(r.Status),
		Deadline:     entities.DateKey(r.Deadline),
		Description:  r.Description,
		Color:        r.Color,
		AssignedTeam: entities.IDSet(r.AssignedTeam),
		Schedule:     toDateSet(r.Schedule),
		TodoList:     []entities.TodoItem(r.TodoList),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	job.ApplyDefaults()
	return job
}

type memberRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Role         string         `db:"role"`
	Color        string         `db:"color"`
	Phone        string         `db:"phone"`
	Email        string         `db:"email"`
	Availability pq.StringArray `db:"availability"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r memberRow) toEntity() *entities.Member {
	return &entities.Member{
		ID:           r.ID,
		Name:         r.Name,
		Role:         r.Role,
		Color:        r.Color,
		Phone:        r.Phone,
		Email:        r.Email,
		Availability: toDateSet(r.Availability),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toDateSet(a pq.StringArray) entities.DateSet {
	out := make(entities.DateSet, 0, len(a))
	for _, s := range a {
		out = append(out, entities.DateKey(s))
	}
	return out
}

func toStringArray(s entities.DateSet) pq.StringArray {
	out := make(pq.StringArray, 0, len(s))
	for _, k := range s {
		out = append(out, string(k))
	}
	return out
}

func toInt64Array(s entities.IDSet) pq.Int64Array {
	if s == nil {
		return pq.Int64Array{}
	}
	return pq.Int64Array(s)
}
