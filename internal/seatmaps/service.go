package seatmaps

import (
	"context"
	"errors"
	"time"

	"seatline/internal/authz"
	"seatline/internal/events"
	"seatline/internal/shared/apperrors"
	"seatline/internal/shared/constants"
	"seatline/pkg/cache"
	"seatline/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetSeatMap(ctx context.Context, eventID uuid.UUID) (*SeatMapResponse, error)
	SaveSeatMap(ctx context.Context, caller authz.Identity, eventID uuid.UUID, req SaveSeatMapRequest) (*SaveResult, error)
	GenerateGrid(ctx context.Context, caller authz.Identity, eventID uuid.UUID, req GenerateGridRequest) (*SaveResult, error)

	// LoadForCheckout reads the stored seat map bypassing the cache
	LoadForCheckout(ctx context.Context, eventID uuid.UUID) (*SeatMap, error)
	MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*CommitResult, error)
}

// EventLookup resolves the event that owns a seat map
type EventLookup interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

type service struct {
	repo     Repository
	events   EventLookup
	guard    *authz.Guard
	cache    cache.Service
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewService(repo Repository, eventLookup EventLookup, guard *authz.Guard, cacheService cache.Service, cacheTTL time.Duration) Service {
	if cacheTTL <= 0 {
		cacheTTL = constants.TTL_SEATMAP_SNAPSHOT
	}
	return &service{
		repo:     repo,
		events:   eventLookup,
		guard:    guard,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger.GetDefault(),
	}
}

func (s *service) GetSeatMap(ctx context.Context, eventID uuid.UUID) (*SeatMapResponse, error) {
	key := constants.BuildSeatMapSnapshotKey(eventID.String())

	var cached SeatMapResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "seat map cache read failed", "event_id", eventID.String(), "error", err)
	}

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	sm, err := s.repo.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := NewSeatMapResponse(eventID, sm)
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "seat map cache write failed", "event_id", eventID.String(), "error", err)
	}
	return resp, nil
}

func (s *service) SaveSeatMap(ctx context.Context, caller authz.Identity, eventID uuid.UUID, req SaveSeatMapRequest) (*SaveResult, error) {
	if err := s.authorize(ctx, caller, eventID); err != nil {
		return nil, err
	}

	objects := req.Layout.Objects
	if objects == nil {
		objects = []Seat{}
	}
	if err := ValidateLayout(objects); err != nil {
		return nil, err
	}

	return s.save(ctx, eventID, Layout{Objects: objects}, req.Width, req.Height)
}

func (s *service) GenerateGrid(ctx context.Context, caller authz.Identity, eventID uuid.UUID, req GenerateGridRequest) (*SaveResult, error) {
	if err := s.authorize(ctx, caller, eventID); err != nil {
		return nil, err
	}

	price := DefaultGridPrice
	if req.BasePrice != nil {
		price = *req.BasePrice
	}
	seats, err := GenerateGrid(req.Rows, req.Cols, price)
	if err != nil {
		return nil, err
	}

	width, height := GridExtent(req.Rows, req.Cols)
	return s.save(ctx, eventID, Layout{Objects: seats}, width, height)
}

func (s *service) LoadForCheckout(ctx context.Context, eventID uuid.UUID) (*SeatMap, error) {
	sm, err := s.repo.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if sm == nil {
		return nil, apperrors.NotFound("seat map for event", eventID.String())
	}
	return sm, nil
}

func (s *service) MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*CommitResult, error) {
	result, err := s.repo.MarkSeatsBooked(ctx, eventID, seatNos, bookingID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, eventID)
	return result, nil
}

func (s *service) authorize(ctx context.Context, caller authz.Identity, eventID uuid.UUID) error {
	if caller.IsGuest() {
		return apperrors.Unauthorized("sign in to edit seat maps")
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	return s.guard.CanEditEvent(caller, event.OwnerID())
}

func (s *service) save(ctx context.Context, eventID uuid.UUID, layout Layout, width, height float64) (*SaveResult, error) {
	result, err := s.repo.Upsert(ctx, eventID, layout, width, height)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, eventID)
	s.logger.LogSeatMapSaved(ctx, eventID.String(), len(result.SeatMap.Layout.Objects), result.SeatMap.Version, result.Created)
	return result, nil
}

func (s *service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildSeatMapSnapshotKey(eventID.String())); err != nil {
		s.logger.WarnContext(ctx, "seat map cache invalidation failed", "event_id", eventID.String(), "error", err)
	}
}
