package ports

import (
	"context"

	"github.com/amire/crewboard/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*entities.User, error)
}

// JobService interface for job management operations
type JobService interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*entities.Job, error)
	GetJob(ctx context.Context, id int64) (*entities.Job, error)
	ReplaceJob(ctx context.Context, id int64, req ReplaceJobRequest) (*entities.Job, error)
	DeleteJob(ctx context.Context, id int64) error
	ListJobs(ctx context.Context, filter JobFilter) ([]*entities.Job, error)
}

// TeamService interface for team member operations
type TeamService interface {
	CreateMember(ctx context.Context, req CreateMemberRequest) (*entities.Member, error)
	GetMember(ctx context.Context, id int64) (*entities.Member, error)
	ReplaceMember(ctx context.Context, id int64, req ReplaceMemberRequest) (*entities.Member, error)
	DeleteMember(ctx context.Context, id int64) error
	ListMembers(ctx context.Context) ([]*entities.Member, error)
	AvailableOn(ctx context.Context, day entities.DateKey) ([]*entities.Member, error)
}

// EventPublisher receives change events after successful writes.
type EventPublisher interface {
	Publish(eventType string, data any)
}

// Event types published by the services
const (
	EventJobCreated    = "job.created"
	EventJobUpdated    = "job.updated"
	EventJobDeleted    = "job.deleted"
	EventMemberCreated = "member.created"
	EventMemberUpdated = "member.updated"
	EventMemberDeleted = "member.deleted"
)

// Request/Response Types

// Auth related types
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type Claims struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
}

type CreateUserRequest struct {
	Username string            `json:"username" validate:"required,min=3,max=50"`
	Password string            `json:"password" validate:"required,min=8"`
	Role     entities.UserRole `json:"role" validate:"required,oneof=admin staff viewer"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

// Job related types
type CreateJobRequest struct {
	Title        string             `json:"title" validate:"required"`
	Status       entities.JobStatus `json:"status" validate:"required,oneof=in_progress done pending"`
	Deadline     entities.DateKey   `json:"deadline" validate:"required"`
	Description  string             `json:"description,omitempty"`
	Color        string             `json:"color,omitempty" validate:"omitempty,hexcolor"`
	AssignedTeam entities.IDSet     `json:"assigned_team"`
	Schedule     entities.DateSet   `json:"schedule"`
}

// ReplaceJobRequest is the full job record sent with PUT /jobs/{id}.
type ReplaceJobRequest struct {
	Title        string              `json:"title" validate:"required"`
	Status       entities.JobStatus  `json:"status" validate:"required,oneof=in_progress done pending"`
	Deadline     entities.DateKey    `json:"deadline" validate:"required"`
	Description  string              `json:"description"`
	Color        string              `json:"color" validate:"omitempty,hexcolor"`
	AssignedTeam entities.IDSet      `json:"assigned_team"`
	Schedule     entities.DateSet    `json:"schedule"`
	TodoList     []entities.TodoItem `json:"todo_list" validate:"dive"`
}

// ReplaceJobFrom builds the PUT body for a job.
func ReplaceJobFrom(j entities.Job) ReplaceJobRequest {
	return ReplaceJobRequest{
		Title:        j.Title,
		Status:       j.Status,
		Deadline:     j.Deadline,
		Description:  j.Description,
		Color:        j.Color,
		AssignedTeam: j.AssignedTeam,
		Schedule:     j.Schedule,
		TodoList:     j.TodoList,
	}
}

// Member related types
type CreateMemberRequest struct {
	Name         string           `json:"name" validate:"required"`
	Role         string           `json:"role"`
	Color        string           `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Phone        string           `json:"phone,omitempty"`
	Email        string           `json:"email,omitempty" validate:"omitempty,email"`
	Availability entities.DateSet `json:"availability"`
}

// ReplaceMemberRequest is the full member record sent with PUT /team/{id}.
type ReplaceMemberRequest struct {
	Name         string           `json:"name" validate:"required"`
	Role         string           `json:"role"`
	Color        string           `json:"color" validate:"omitempty,hexcolor"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email" validate:"omitempty,email"`
	Availability entities.DateSet `json:"availability"`
}

// ReplaceMemberFrom builds the PUT body for a member.
func ReplaceMemberFrom(m entities.Member) ReplaceMemberRequest {
	return ReplaceMemberRequest{
		Name:         m.Name,
		Role:         m.Role,
		Color:        m.Color,
		Phone:        m.Phone,
		Email:        m.Email,
		Availability: m.Availability,
	}
}
