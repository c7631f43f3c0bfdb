package entities

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Enums and types
type JobStatus string

const (
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusPending    JobStatus = "pending"
)

// Valid reports whether s is one of the known job statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusInProgress, JobStatusDone, JobStatusPending:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleStaff  UserRole = "staff"
	UserRoleViewer UserRole = "viewer"
)

// Defaults applied to new records when the caller leaves them blank.
const (
	DefaultJobDescription = "No description provided."
	DefaultJobColor       = "#4a90e2"
)

// Job is a unit of work with a single deadline and a set of scheduled days.
// Deadline and Schedule are independent: a job can be due on a day it is not
// worked, and worked on days it is not due.
type Job struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Status       JobStatus  `json:"status" db:"status"`
	Deadline     DateKey    `json:"deadline" db:"deadline"`
	Description  string     `json:"description" db:"description"`
	Color        string     `json:"color" db:"color"`
	AssignedTeam IDSet      `json:"assigned_team"`
	Schedule     DateSet    `json:"schedule"`
	TodoList     []TodoItem `json:"todo_list"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TodoItem is a checklist entry owned by a single job.
type TodoItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Member is a team member with a declared availability calendar.
type Member struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	Color        string    `json:"color" db:"color"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Email        string    `json:"email,omitempty" db:"email"`
	Availability DateSet   `json:"availability"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// User is a dashboard login account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewTodoItem returns an unchecked item with a fresh id.
func NewTodoItem(text string) TodoItem {
	return TodoItem{ID: uuid.NewString(), Text: text}
}

// Clone returns a deep copy of the job.
func (j Job) Clone() Job {
	j.AssignedTeam = j.AssignedTeam.clone()
	j.Schedule = j.Schedule.clone()
	if j.TodoList != nil {
		j.TodoList = append([]TodoItem(nil), j.TodoList...)
	}
	return j
}

// IsScheduledOn reports whether the job is worked on day k.
func (j *Job) IsScheduledOn(k DateKey) bool {
	return j.Schedule.Contains(k)
}

// IsDueOn reports whether the job's deadline falls on day k.
func (j *Job) IsDueOn(k DateKey) bool {
	return j.Deadline != "" && j.Deadline == k
}

// IsActive reports whether work on the job is in progress.
func (j *Job) IsActive() bool {
	return j.Status == JobStatusInProgress
}

// TodoIndex returns the position of the todo with the given id, or -1.
func (j *Job) TodoIndex(todoID string) int {
	for i, item := range j.TodoList {
		if item.ID == todoID {
			return i
		}
	}
	return -1
}

// ApplyDefaults fills the fields a new job may omit.
func (j *Job) ApplyDefaults() {
	if j.Description == "" {
		j.Description = DefaultJobDescription
	}
	if j.Color == "" {
		j.Color = DefaultJobColor
	}
	if j.AssignedTeam == nil {
		j.AssignedTeam = IDSet{}
	}
	if j.Schedule == nil {
		j.Schedule = DateSet{}
	}
	if j.TodoList == nil {
		j.TodoList = []TodoItem{}
	}
}

// Clone returns a deep copy of the member.
func (m Member) Clone() Member {
	m.Availability = m.Availability.clone()
	return m
}

// IsAvailableOn reports whether the member declared availability for day k.
func (m *Member) IsAvailableOn(k DateKey) bool {
	return m.Availability.Contains(k)
}

// RandomColor returns a random #rrggbb color for a new member.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}
