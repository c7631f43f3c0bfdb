package registry

import (
	"context"
	"errors"

	"github.com/amire/crewboard/internal/notify"
)

// API is everything the registries need from the server.
type API interface {
	JobAPI
	TeamAPI
}

// Store bundles the job and team registries and keeps them consistent:
// deleting a member detaches it from every local job.
type Store struct {
	Jobs *JobRegistry
	Team *TeamRegistry
}

// NewStore creates both registries over the same API and notifier.
func NewStore(api API, notifier notify.Notifier, opts ...Option) *Store {
	s := &Store{
		Jobs: NewJobRegistry(api, notifier, opts...),
		Team: NewTeamRegistry(api, notifier, opts...),
	}
	s.Team.OnMemberDeleted(s.Jobs.DetachMember)
	return s
}

// Load loads jobs and team. Both loads are attempted; the errors are joined.
func (s *Store) Load(ctx context.Context) error {
	jobErr := s.Jobs.Load(ctx)
	teamErr := s.Team.Load(ctx)
	return errors.Join(jobErr, teamErr)
}

// IsLoading reports whether either collection is still loading.
func (s *Store) IsLoading() bool {
	return s.Jobs.IsLoading() || s.Team.IsLoading()
}
