package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListPublished(ctx context.Context, query ListEventsQuery) ([]Event, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event", id.String())
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *repository) ListPublished(ctx context.Context, query ListEventsQuery) ([]Event, int64, error) {
	db := r.db.WithContext(ctx).Model(&Event{}).Where("is_published = ?", true)
	if query.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", query.City)
	}
	if query.Search != "" {
		pattern := likePattern(query.Search)
		db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []Event
	offset := (query.Page - 1) * query.Limit
	if err := db.Order("start_date ASC").Offset(offset).Limit(query.Limit).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring match, escaping LIKE wildcards
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
