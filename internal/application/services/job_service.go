package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// JobService handles job operations
type JobService struct {
	jobRepo    ports.JobRepository
	memberRepo ports.MemberRepository
	events     ports.EventPublisher
	loc        *time.Location
	logger     *logger.Logger
}

// NewJobService creates a new job service. Dates are normalized in loc.
// Assigned team ids are checked against memberRepo.
func NewJobService(jobRepo ports.JobRepository, memberRepo ports.MemberRepository, events ports.EventPublisher, loc *time.Location, logger *logger.Logger) *JobService {
	if loc == nil {
		loc = time.Local
	}
	return &JobService{
		jobRepo:    jobRepo,
		memberRepo: memberRepo,
		events:     publisherOrDiscard(events),
		loc:        loc,
		logger:     logger.WithComponent("jobs"),
	}
}

// CreateJob stores a new job with defaults filled in
func (s *JobService) CreateJob(ctx context.Context, req ports.CreateJobRequest) (*entities.Job, error) {
	job := &entities.Job{
		Title:        strings.TrimSpace(req.Title),
		Status:       req.Status,
		Deadline:     req.Deadline,
		Description:  req.Description,
		Color:        req.Color,
		AssignedTeam: req.AssignedTeam,
		Schedule:     req.Schedule,
	}
	if err := s.normalize(job); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, job.AssignedTeam); err != nil {
		return nil, err
	}
	job.ApplyDefaults()

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Infow("Job created", "job_id", job.ID, "title", job.Title)
	s.events.Publish(ports.EventJobCreated, job)
	return job, nil
}

// GetJob retrieves a job by ID
func (s *JobService) GetJob(ctx context.Context, id int64) (*entities.Job, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ReplaceJob overwrites every field of an existing job
func (s *JobService) ReplaceJob(ctx context.Context, id int64, req ports.ReplaceJobRequest) (*entities.Job, error) {
	existing, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	job := &entities.Job{
		ID:           existing.ID,
		Title:        strings.TrimSpace(req.Title),
		Status:       req.Status,
		Deadline:     req.Deadline,
		Description:  req.Description,
		Color:        req.Color,
		AssignedTeam: req.AssignedTeam,
		Schedule:     req.Schedule,
		TodoList:     req.TodoList,
		CreatedAt:    existing.CreatedAt,
	}
	if err := s.normalize(job); err != nil {
		return nil, err
	}
	if err := s.checkTeam(ctx, job.AssignedTeam); err != nil {
		return nil, err
	}
	job.ApplyDefaults()

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.logger.Infow("Job updated", "job_id", job.ID)
	s.events.Publish(ports.EventJobUpdated, job)
	return job, nil
}

// DeleteJob removes a job
func (s *JobService) DeleteJob(ctx context.Context, id int64) error {
	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Job deleted", "job_id", id)
	s.events.Publish(ports.EventJobDeleted, map[string]int64{"id": id})
	return nil
}

// ListJobs returns the jobs matching filter
func (s *JobService) ListJobs(ctx context.Context, filter ports.JobFilter) ([]*entities.Job, error) {
	jobs, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// normalize puts dates in canonical form, deduplicates the team and
// gives every todo an id.
func (s *JobService) normalize(job *entities.Job) error {
	if job.Title == "" {
		return &entities.ValidationError{Field: "title", Reason: "is required"}
	}
	if !job.Status.Valid() {
		return &entities.ValidationError{Field: "status", Reason: "must be one of: in_progress done pending"}
	}

	deadline, err := entities.ParseDateKey(string(job.Deadline), s.loc)
	if err != nil {
		return &entities.ValidationError{Field: "deadline", Reason: "must be a YYYY-MM-DD date"}
	}
	job.Deadline = deadline

	if job.Schedule, err = job.Schedule.Normalize(s.loc); err != nil {
		return &entities.ValidationError{Field: "schedule", Reason: "must contain YYYY-MM-DD dates"}
	}
	job.AssignedTeam = job.AssignedTeam.Dedup()

	for i := range job.TodoList {
		job.TodoList[i].Text = strings.TrimSpace(job.TodoList[i].Text)
		if job.TodoList[i].Text == "" {
			return &entities.ValidationError{Field: "todo_list", Reason: "items need text"}
		}
		if job.TodoList[i].ID == "" {
			job.TodoList[i].ID = uuid.NewString()
		}
	}
	return nil
}

// checkTeam rejects ids of members that do not exist, so a stale full-record
// update cannot bring back a deleted member.
func (s *JobService) checkTeam(ctx context.Context, team entities.IDSet) error {
	if len(team) == 0 {
		return nil
	}
	found, err := s.memberRepo.ExistingIDs(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to check assigned team: %w", err)
	}
	known := entities.IDSet(found)
	for _, id := range team {
		if !known.Contains(id) {
			return &entities.ValidationError{Field: "assigned_team", Reason: fmt.Sprintf("unknown team member %d", id)}
		}
	}
	return nil
}
