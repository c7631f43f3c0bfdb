package ports

import (
	"context"

	"github.com/amire/crewboard/internal/domain/entities"
)

// JobRepository defines the interface for job data operations
type JobRepository interface {
	Create(ctx context.Context, job *entities.Job) error
	GetByID(ctx context.Context, id int64) (*entities.Job, error)
	Update(ctx context.Context, job *entities.Job) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter JobFilter) ([]*entities.Job, error)
}

// MemberRepository defines the interface for team member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *entities.Member) error
	GetByID(ctx context.Context, id int64) (*entities.Member, error)
	Update(ctx context.Context, member *entities.Member) error
	// Delete removes the member and strips its id from every job's
	// assigned team in the same transaction.
	Delete(ctx context.Context, id int64) (detachedJobs []int64, err error)
	List(ctx context.Context) ([]*entities.Member, error)
	AvailableOn(ctx context.Context, day entities.DateKey) ([]*entities.Member, error)
	// ExistingIDs returns the subset of ids that belong to stored members.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserRepository defines the interface for login account operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// JobFilter narrows job listings
type JobFilter struct {
	Status      *entities.JobStatus
	Day         *entities.DateKey
	MemberID    *int64
	DeadlineMin *entities.DateKey
	DeadlineMax *entities.DateKey
}
