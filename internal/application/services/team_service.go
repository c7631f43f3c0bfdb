package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// TeamService handles team member operations
type TeamService struct {
	memberRepo ports.MemberRepository
	events     ports.EventPublisher
	loc        *time.Location
	logger     *logger.Logger
}

// NewTeamService creates a new team service
func NewTeamService(memberRepo ports.MemberRepository, events ports.EventPublisher, loc *time.Location, logger *logger.Logger) *TeamService {
	if loc == nil {
		loc = time.Local
	}
	return &TeamService{
		memberRepo: memberRepo,
		events:     publisherOrDiscard(events),
		loc:        loc,
		logger:     logger.WithComponent("team"),
	}
}

// CreateMember stores a new team member. A random color is assigned when
// none is given.
func (s *TeamService) CreateMember(ctx context.Context, req ports.CreateMemberRequest) (*entities.Member, error) {
	member := &entities.Member{
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Color:        req.Color,
		Phone:        req.Phone,
		Email:        req.Email,
		Availability: req.Availability,
	}
	if member.Color == "" {
		member.Color = entities.RandomColor()
	}
	if err := s.normalize(member); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}

	s.logger.Infow("Team member created", "member_id", member.ID, "name", member.Name)
	s.events.Publish(ports.EventMemberCreated, member)
	return member, nil
}

// GetMember retrieves a team member by ID
func (s *TeamService) GetMember(ctx context.Context, id int64) (*entities.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

// ReplaceMember overwrites every field of an existing member
func (s *TeamService) ReplaceMember(ctx context.Context, id int64, req ports.ReplaceMemberRequest) (*entities.Member, error) {
	existing, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member := &entities.Member{
		ID:           existing.ID,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Color:        req.Color,
		Phone:        req.Phone,
		Email:        req.Email,
		Availability: req.Availability,
		CreatedAt:    existing.CreatedAt,
	}
	if member.Color == "" {
		member.Color = existing.Color
	}
	if err := s.normalize(member); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}

	s.logger.Infow("Team member updated", "member_id", member.ID)
	s.events.Publish(ports.EventMemberUpdated, member)
	return member, nil
}

// DeleteMember removes a member and detaches it from every job
func (s *TeamService) DeleteMember(ctx context.Context, id int64) error {
	detached, err := s.memberRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Infow("Team member deleted", "member_id", id, "detached_jobs", detached)
	s.events.Publish(ports.EventMemberDeleted, map[string]any{"id": id, "detached_jobs": detached})
	return nil
}

// ListMembers returns the whole team
func (s *TeamService) ListMembers(ctx context.Context) ([]*entities.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return members, nil
}

// AvailableOn returns the members available on day
func (s *TeamService) AvailableOn(ctx context.Context, day entities.DateKey) ([]*entities.Member, error) {
	key, err := entities.ParseDateKey(string(day), s.loc)
	if err != nil {
		return nil, &entities.ValidationError{Field: "day", Reason: "must be a YYYY-MM-DD date"}
	}
	return s.memberRepo.AvailableOn(ctx, key)
}

func (s *TeamService) normalize(member *entities.Member) error {
	if member.Name == "" {
		return &entities.ValidationError{Field: "name", Reason: "is required"}
	}
	availability, err := member.Availability.Normalize(s.loc)
	if err != nil {
		return &entities.ValidationError{Field: "availability", Reason: "must contain YYYY-MM-DD dates"}
	}
	member.Availability = availability
	return nil
}
