package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"seatline/internal/authz"
	"seatline/internal/shared/apperrors"
	"seatline/internal/shared/constants"
	"seatline/pkg/cache"
	"seatline/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateEvent(ctx context.Context, caller authz.Identity, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, caller authz.Identity, id uuid.UUID, req UpdateEventRequest) (*Event, error)
	PublishEvent(ctx context.Context, caller authz.Identity, id uuid.UUID) (*Event, error)
	ListPublished(ctx context.Context, query ListEventsQuery) (*PaginatedEvents, error)
}

// OrganizerVerifier reports whether an organizer passed business verification
type OrganizerVerifier interface {
	IsVerifiedOrganizer(ctx context.Context, userID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	guard    *authz.Guard
	verifier OrganizerVerifier
	cache    cache.Service
	logger   *logger.Logger
}

func NewService(repo Repository, guard *authz.Guard, verifier OrganizerVerifier, cacheService cache.Service) Service {
	return &service{
		repo:     repo,
		guard:    guard,
		verifier: verifier,
		cache:    cacheService,
		logger:   logger.GetDefault(),
	}
}

func (s *service) CreateEvent(ctx context.Context, caller authz.Identity, req CreateEventRequest) (*Event, error) {
	if err := s.guard.CanCreateEvent(caller); err != nil {
		return nil, err
	}
	organizerID, err := uuid.Parse(caller.SubjectID)
	if err != nil {
		return nil, apperrors.Validation("organizer_id", "caller id is not a valid uuid")
	}
	if err := checkSchedule(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	event := &Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Name:        strings.TrimSpace(req.Name),
		City:        strings.TrimSpace(req.City),
		VenueName:   strings.TrimSpace(req.VenueName),
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Description: req.Description,
		Performers:  req.Performers,
	}
	if event.Performers == nil {
		event.Performers = []string{}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Event Created", "event_id", event.ID.String(), "organizer_id", caller.SubjectID)
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	key := constants.BuildEventDetailKey(id.String())

	var cached Event
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "event cache read failed", "event_id", id.String(), "error", err)
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, event, constants.TTL_EVENT_DETAIL); err != nil {
		s.logger.WarnContext(ctx, "event cache write failed", "event_id", id.String(), "error", err)
	}
	return event, nil
}

func (s *service) UpdateEvent(ctx context.Context, caller authz.Identity, id uuid.UUID, req UpdateEventRequest) (*Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanEditEvent(caller, event.OwnerID()); err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = strings.TrimSpace(*req.Name)
	}
	if req.City != nil {
		event.City = strings.TrimSpace(*req.City)
	}
	if req.VenueName != nil {
		event.VenueName = strings.TrimSpace(*req.VenueName)
	}
	if req.StartDate != nil {
		event.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate.UTC()
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Performers != nil {
		event.Performers = req.Performers
	}
	if err := checkSchedule(event.StartDate, event.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return event, nil
}

func (s *service) PublishEvent(ctx context.Context, caller authz.Identity, id uuid.UUID) (*Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanEditEvent(caller, event.OwnerID()); err != nil {
		return nil, err
	}
	if event.IsPublished {
		return event, nil
	}

	if !caller.IsAdmin() && s.verifier != nil {
		verified, err := s.verifier.IsVerifiedOrganizer(ctx, event.OrganizerID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, apperrors.Forbidden("organizer verification is pending")
		}
	}

	event.IsPublished = true
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return event, nil
}

func (s *service) ListPublished(ctx context.Context, query ListEventsQuery) (*PaginatedEvents, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	query.Search = strings.TrimSpace(query.Search)
	events, total, err := s.repo.ListPublished(ctx, query)
	if err != nil {
		return nil, err
	}
	return &PaginatedEvents{Events: events, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildEventDetailKey(id.String())); err != nil {
		s.logger.WarnContext(ctx, "event cache invalidation failed", "event_id", id.String(), "error", err)
	}
}

func checkSchedule(start, end time.Time) error {
	if !end.After(start) {
		return apperrors.Validation("end_date", "end date must be after start date")
	}
	return nil
}
