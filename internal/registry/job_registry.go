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

// JobAPI is the remote side of the job registry.
type JobAPI interface {
	ListJobs(ctx context.Context) ([]entities.Job, error)
	CreateJob(ctx context.Context, req ports.CreateJobRequest) (entities.Job, error)
	UpdateJob(ctx context.Context, job entities.Job) (entities.Job, error)
	DeleteJob(ctx context.Context, id int64) error
}

// JobRegistry is the local job collection kept in sync with the API.
// It is safe for concurrent use; readers get copies.
type JobRegistry struct {
	api      JobAPI
	report   reporter
	validate *validator.Validate
	loc      *time.Location
	logger   *logger.Logger

	mu      sync.RWMutex
	jobs    []entities.Job
	loading bool
	seq     *sequencer
}

// NewJobRegistry creates an empty registry in the loading state.
func NewJobRegistry(api JobAPI, notifier notify.Notifier, opts ...Option) *JobRegistry {
	o := buildOptions(opts)
	if notifier == nil {
		notifier = notify.Discard
	}
	l := o.logger.WithComponent("job_registry")
	return &JobRegistry{
		api:      api,
		report:   reporter{notifier: notifier, logger: l},
		validate: newValidator(),
		loc:      o.location,
		logger:   l,
		loading:  true,
		seq:      newSequencer(),
	}
}

// Load replaces the collection with the server's. Without a session no
// request is made and the registry stays loading. Load failures are logged
// but not notified.
func (r *JobRegistry) Load(ctx context.Context) error {
	jobs, err := r.api.ListJobs(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNotAuthenticated) {
			r.logger.Debug("Skipping job load without a session")
			return err
		}
		r.logger.Errorw("Failed to load jobs", "error", err)
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
		return err
	}

	loaded := make([]entities.Job, 0, len(jobs))
	for _, j := range jobs {
		loaded = append(loaded, j.Clone())
	}

	r.mu.Lock()
	r.jobs = loaded
	r.loading = false
	r.mu.Unlock()

	r.logger.Debugw("Jobs loaded", "count", len(loaded))
	return nil
}

// IsLoading reports whether the initial load is still outstanding.
func (r *JobRegistry) IsLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Jobs returns a copy of the collection in server order.
func (r *JobRegistry) Jobs() []entities.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Clone())
	}
	return out
}

// Job returns a copy of the job with the given id.
func (r *JobRegistry) Job(id int64) (entities.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.jobs[i].Clone(), true
	}
	return entities.Job{}, false
}

// JobsScheduledOn returns the jobs worked on day.
func (r *JobRegistry) JobsScheduledOn(day entities.DateKey) []entities.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.Job
	for i := range r.jobs {
		if r.jobs[i].IsScheduledOn(day) {
			out = append(out, r.jobs[i].Clone())
		}
	}
	return out
}

// AddJob validates req, fills defaults and creates the job remotely.
// Invalid input is rejected before any request is made.
func (r *JobRegistry) AddJob(ctx context.Context, req ports.CreateJobRequest) (entities.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate(r.validate, req); err != nil {
		return entities.Job{}, r.report.fail(actAddJob, err)
	}

	deadline, err := normalizeDay(req.Deadline, "deadline", r.loc)
	if err != nil {
		return entities.Job{}, r.report.fail(actAddJob, err)
	}
	req.Deadline = deadline

	schedule, err := req.Schedule.Normalize(r.loc)
	if err != nil {
		return entities.Job{}, r.report.fail(actAddJob, &entities.ValidationError{Field: "schedule", Reason: "must contain YYYY-MM-DD dates"})
	}
	req.Schedule = schedule
	req.AssignedTeam = req.AssignedTeam.Dedup()

	draft := entities.Job{
		Description:  req.Description,
		Color:        req.Color,
		AssignedTeam: req.AssignedTeam,
		Schedule:     req.Schedule,
	}
	draft.ApplyDefaults()
	req.Description = draft.Description
	req.Color = draft.Color
	req.AssignedTeam = draft.AssignedTeam
	req.Schedule = draft.Schedule

	created, err := r.api.CreateJob(ctx, req)
	if err != nil {
		return entities.Job{}, r.report.fail(actAddJob, err)
	}

	r.mu.Lock()
	r.jobs = append(r.jobs, created.Clone())
	r.mu.Unlock()

	r.report.succeed(actAddJob)
	return created, nil
}

// DeleteJob removes the job remotely, then locally. The request is sent
// even when the id is unknown locally.
func (r *JobRegistry) DeleteJob(ctx context.Context, id int64) error {
	if err := r.api.DeleteJob(ctx, id); err != nil {
		return r.report.fail(actDeleteJob, err)
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
	}
	r.seq.forget(id)
	r.mu.Unlock()

	r.report.succeed(actDeleteJob)
	return nil
}

// UpdateJob sends the full record and replaces the local copy with the
// server's response.
func (r *JobRegistry) UpdateJob(ctx context.Context, job entities.Job) (entities.Job, error) {
	job = job.Clone()
	if err := validate(r.validate, ports.ReplaceJobFrom(job)); err != nil {
		return entities.Job{}, r.report.fail(actUpdateJob, err)
	}
	deadline, err := normalizeDay(job.Deadline, "deadline", r.loc)
	if err != nil {
		return entities.Job{}, r.report.fail(actUpdateJob, err)
	}
	job.Deadline = deadline
	if job.Schedule, err = job.Schedule.Normalize(r.loc); err != nil {
		return entities.Job{}, r.report.fail(actUpdateJob, &entities.ValidationError{Field: "schedule", Reason: "must contain YYYY-MM-DD dates"})
	}

	return r.send(ctx, actUpdateJob, job)
}

// AssignTeamMember adds memberID to the job's team. Assigning twice is
// a no-op on the set.
func (r *JobRegistry) AssignTeamMember(ctx context.Context, jobID, memberID int64) (entities.Job, error) {
	return r.mutate(ctx, actAssignMember, jobID, func(j *entities.Job) error {
		j.AssignedTeam = j.AssignedTeam.Add(memberID)
		return nil
	})
}

// UnassignTeamMember removes memberID from the job's team.
func (r *JobRegistry) UnassignTeamMember(ctx context.Context, jobID, memberID int64) (entities.Job, error) {
	return r.mutate(ctx, actUnassign, jobID, func(j *entities.Job) error {
		j.AssignedTeam = j.AssignedTeam.Remove(memberID)
		return nil
	})
}

// ToggleJobSchedule adds day to the schedule when absent and removes it
// when present.
func (r *JobRegistry) ToggleJobSchedule(ctx context.Context, jobID int64, day entities.DateKey) (entities.Job, error) {
	key, err := normalizeDay(day, "day", r.loc)
	if err != nil {
		return entities.Job{}, r.report.fail(actToggleSched, err)
	}
	return r.mutate(ctx, actToggleSched, jobID, func(j *entities.Job) error {
		j.Schedule = j.Schedule.Toggle(key)
		return nil
	})
}

// AddTodoItem appends an unchecked item to the job's list.
func (r *JobRegistry) AddTodoItem(ctx context.Context, jobID int64, text string) (entities.Job, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.Job{}, r.report.fail(actAddTodo, &entities.ValidationError{Field: "text", Reason: "is required"})
	}
	return r.mutate(ctx, actAddTodo, jobID, func(j *entities.Job) error {
		j.TodoList = append(j.TodoList, entities.NewTodoItem(text))
		return nil
	})
}

// ToggleTodoItem flips the completed flag of one todo.
func (r *JobRegistry) ToggleTodoItem(ctx context.Context, jobID int64, todoID string) (entities.Job, error) {
	return r.mutate(ctx, actToggleTodo, jobID, func(j *entities.Job) error {
		i := j.TodoIndex(todoID)
		if i < 0 {
			return &entities.NotFoundError{Kind: "todo item", ID: todoID}
		}
		j.TodoList[i].Completed = !j.TodoList[i].Completed
		return nil
	})
}

// DeleteTodoItem removes one todo. Removing an unknown id leaves the list
// as is but still saves the job.
func (r *JobRegistry) DeleteTodoItem(ctx context.Context, jobID int64, todoID string) (entities.Job, error) {
	return r.mutate(ctx, actDeleteTodo, jobID, func(j *entities.Job) error {
		if i := j.TodoIndex(todoID); i >= 0 {
			j.TodoList = append(j.TodoList[:i], j.TodoList[i+1:]...)
		}
		return nil
	})
}

// DetachMember drops memberID from every local job. The server performs
// the same cleanup when the member is deleted.
func (r *JobRegistry) DetachMember(memberID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	detached := 0
	for i := range r.jobs {
		if r.jobs[i].AssignedTeam.Contains(memberID) {
			r.jobs[i].AssignedTeam = r.jobs[i].AssignedTeam.Remove(memberID)
			detached++
		}
	}
	if detached > 0 {
		r.logger.Debugw("Detached deleted member from jobs", "member_id", memberID, "jobs", detached)
	}
}

// mutate applies change to a copy of the local job and saves it.
func (r *JobRegistry) mutate(ctx context.Context, a action, jobID int64, change func(*entities.Job) error) (entities.Job, error) {
	current, ok := r.Job(jobID)
	if !ok {
		return entities.Job{}, r.report.fail(a, &entities.NotFoundError{Kind: "job", ID: jobID})
	}
	if err := change(&current); err != nil {
		return entities.Job{}, r.report.fail(a, err)
	}
	return r.send(ctx, a, current)
}

// send PUTs job and commits the response unless a newer one for the same
// job was applied while this request was in flight.
func (r *JobRegistry) send(ctx context.Context, a action, job entities.Job) (entities.Job, error) {
	r.mu.Lock()
	seq := r.seq.next(job.ID)
	r.mu.Unlock()

	updated, err := r.api.UpdateJob(ctx, job)
	if err != nil {
		return entities.Job{}, r.report.fail(a, err)
	}

	r.mu.Lock()
	if r.seq.accept(job.ID, seq) {
		if i := r.indexOf(updated.ID); i >= 0 {
			r.jobs[i] = updated.Clone()
		}
	} else {
		r.logger.Debugw("Discarding stale job response", "job_id", job.ID, "seq", seq)
	}
	r.mu.Unlock()

	r.report.succeed(a)
	return updated, nil
}

func (r *JobRegistry) indexOf(id int64) int {
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			return i
		}
	}
	return -1
}
