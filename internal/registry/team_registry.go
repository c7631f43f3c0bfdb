package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/notify"
	"github.com/amire/crewboard/internal/ports"
)

// TeamAPI is the remote side of the team registry.
type TeamAPI interface {
	ListMembers(ctx context.Context) ([]entities.Member, error)
	CreateMember(ctx context.Context, req ports.CreateMemberRequest) (entities.Member, error)
	UpdateMember(ctx context.Context, member entities.Member) (entities.Member, error)
	DeleteMember(ctx context.Context, id int64) error
}

// TeamRegistry is the local team collection kept in sync with the API.
type TeamRegistry struct {
	api      TeamAPI
	report   reporter
	validate *validator.Validate
	loc      *time.Location
	logger   *logger.Logger

	mu        sync.RWMutex
	members   []entities.Member
	loading   bool
	seq       *sequencer
	onDeleted []func(memberID int64)
}

// NewTeamRegistry creates an empty registry in the loading state.
func NewTeamRegistry(api TeamAPI, notifier notify.Notifier, opts ...Option) *TeamRegistry {
	o := buildOptions(opts)
	if notifier == nil {
		notifier = notify.Discard
	}
	l := o.logger.WithComponent("team_registry")
	return &TeamRegistry{
		api:      api,
		report:   reporter{notifier: notifier, logger: l},
		validate: newValidator(),
		loc:      o.location,
		logger:   l,
		loading:  true,
		seq:      newSequencer(),
	}
}

// OnMemberDeleted registers fn to run after a member is deleted.
func (r *TeamRegistry) OnMemberDeleted(fn func(memberID int64)) {
	r.mu.Lock()
	r.onDeleted = append(r.onDeleted, fn)
	r.mu.Unlock()
}

// Load replaces the team with the server's.
func (r *TeamRegistry) Load(ctx context.Context) error {
	members, err := r.api.ListMembers(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNotAuthenticated) {
			r.logger.Debug("Skipping team load without a session")
			return err
		}
		r.logger.Errorw("Failed to load team", "error", err)
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
		return err
	}

	loaded := make([]entities.Member, 0, len(members))
	for _, m := range members {
		loaded = append(loaded, m.Clone())
	}

	r.mu.Lock()
	r.members = loaded
	r.loading = false
	r.mu.Unlock()

	r.logger.Debugw("Team loaded", "count", len(loaded))
	return nil
}

// IsLoading reports whether the initial load is still outstanding.
func (r *TeamRegistry) IsLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Members returns a copy of the team.
func (r *TeamRegistry) Members() []entities.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.Clone())
	}
	return out
}

// Member returns a copy of the member with the given id.
func (r *TeamRegistry) Member(id int64) (entities.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.members[i].Clone(), true
	}
	return entities.Member{}, false
}

// MembersAvailableOn returns the members who declared availability for day.
func (r *TeamRegistry) MembersAvailableOn(day entities.DateKey) []entities.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.Member
	for i := range r.members {
		if r.members[i].IsAvailableOn(day) {
			out = append(out, r.members[i].Clone())
		}
	}
	return out
}

// AddTeamMember creates a member. A random color is picked when none is
// given.
func (r *TeamRegistry) AddTeamMember(ctx context.Context, req ports.CreateMemberRequest) (entities.Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(r.validate, req); err != nil {
		return entities.Member{}, r.report.fail(actAddMember, err)
	}
	availability, err := req.Availability.Normalize(r.loc)
	if err != nil {
		return entities.Member{}, r.report.fail(actAddMember, &entities.ValidationError{Field: "availability", Reason: "must contain YYYY-MM-DD dates"})
	}
	req.Availability = availability
	if req.Availability == nil {
		req.Availability = entities.DateSet{}
	}
	if req.Color == "" {
		req.Color = entities.RandomColor()
	}

	created, err := r.api.CreateMember(ctx, req)
	if err != nil {
		return entities.Member{}, r.report.fail(actAddMember, err)
	}

	r.mu.Lock()
	r.members = append(r.members, created.Clone())
	r.mu.Unlock()

	r.report.succeed(actAddMember)
	return created, nil
}

// DeleteTeamMember removes the member remotely, then locally, and runs the
// deletion hooks.
func (r *TeamRegistry) DeleteTeamMember(ctx context.Context, id int64) error {
	if err := r.api.DeleteMember(ctx, id); err != nil {
		return r.report.fail(actDeleteMember, err)
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		r.members = append(r.members[:i], r.members[i+1:]...)
	}
	r.seq.forget(id)
	hooks := append([]func(int64){}, r.onDeleted...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}

	r.report.succeed(actDeleteMember)
	return nil
}

// UpdateTeamMember sends the full record and replaces the local copy.
func (r *TeamRegistry) UpdateTeamMember(ctx context.Context, member entities.Member) (entities.Member, error) {
	member = member.Clone()
	member.Name = strings.TrimSpace(member.Name)
	if err := validate(r.validate, ports.ReplaceMemberFrom(member)); err != nil {
		return entities.Member{}, r.report.fail(actUpdateMember, err)
	}
	var err error
	if member.Availability, err = member.Availability.Normalize(r.loc); err != nil {
		return entities.Member{}, r.report.fail(actUpdateMember, &entities.ValidationError{Field: "availability", Reason: "must contain YYYY-MM-DD dates"})
	}
	return r.send(ctx, actUpdateMember, member)
}

// ToggleAvailability flips day in the member's availability.
func (r *TeamRegistry) ToggleAvailability(ctx context.Context, memberID int64, day entities.DateKey) (entities.Member, error) {
	key, err := normalizeDay(day, "day", r.loc)
	if err != nil {
		return entities.Member{}, r.report.fail(actToggleAvail, err)
	}
	current, ok := r.Member(memberID)
	if !ok {
		return entities.Member{}, r.report.fail(actToggleAvail, &entities.NotFoundError{Kind: "team member", ID: memberID})
	}
	current.Availability = current.Availability.Toggle(key)
	return r.send(ctx, actToggleAvail, current)
}

func (r *TeamRegistry) send(ctx context.Context, a action, member entities.Member) (entities.Member, error) {
	r.mu.Lock()
	seq := r.seq.next(member.ID)
	r.mu.Unlock()

	updated, err := r.api.UpdateMember(ctx, member)
	if err != nil {
		return entities.Member{}, r.report.fail(a, err)
	}

	r.mu.Lock()
	if r.seq.accept(member.ID, seq) {
		if i := r.indexOf(updated.ID); i >= 0 {
			r.members[i] = updated.Clone()
		}
	} else {
		r.logger.Debugw("Discarding stale member response", "member_id", member.ID, "seq", seq)
	}
	r.mu.Unlock()

	r.report.succeed(a)
	return updated, nil
}

func (r *TeamRegistry) indexOf(id int64) int {
	for i := range r.members {
		if r.members[i].ID == id {
			return i
		}
	}
	return -1
}
