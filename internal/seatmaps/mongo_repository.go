package seatmaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seatMapDocument struct {
	ID        string         `bson:"_id"`
	EventID   string         `bson:"eventId"`
	Layout    layoutDocument `bson:"layout"`
	Width     float64        `bson:"width"`
	Height    float64        `bson:"height"`
	Version   int64          `bson:"version"`
	CreatedAt time.Time      `bson:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt"`
}

type layoutDocument struct {
	Objects []seatDocument `bson:"objects"`
}

type seatDocument struct {
	Left   float64          `bson:"left"`
	Top    float64          `bson:"top"`
	Width  float64          `bson:"width"`
	Height float64          `bson:"height"`
	Data   seatDataDocument `bson:"data"`
}

type seatDataDocument struct {
	SeatNo    string               `bson:"seatNo"`
	Price     primitive.Decimal128 `bson:"price"`
	Category  string               `bson:"category"`
	Status    string               `bson:"status"`
	BookingID string               `bson:"bookingId,omitempty"`
}

type mongoRepository struct {
	coll       *mongo.Collection
	maxRetries int
}

// NewMongoRepository returns the document store variant. Seat commits use one
// array-filtered conditional update per seat; layout saves are versioned.
func NewMongoRepository(coll *mongo.Collection, maxRetries int) Repository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &mongoRepository{coll: coll, maxRetries: maxRetries}
}

// EnsureIndexes creates the unique event index that keeps one seat map per event
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_event"),
	})
	if err != nil {
		return fmt.Errorf("failed to create seat map index: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) (*SeatMap, error) {
	var doc seatMapDocument
	err := r.coll.FindOne(ctx, bson.M{"eventId": eventID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	return fromDocument(doc)
}

func (r *mongoRepository) Upsert(ctx context.Context, eventID uuid.UUID, layout Layout, width, height float64) (*SaveResult, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		current, err := r.GetByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if current == nil {
			sm := &SeatMap{
				ID:        uuid.New(),
				EventID:   eventID,
				Layout:    layout,
				Width:     orDefault(width, DefaultWidth),
				Height:    orDefault(height, DefaultHeight),
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			doc, err := toDocument(sm)
			if err != nil {
				return nil, err
			}
			_, err = r.coll.InsertOne(ctx, doc)
			if err == nil {
				return &SaveResult{SeatMap: sm, Created: true}, nil
			}
			if !mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("failed to create seat map: %w", err)
			}
			// Created concurrently; replace it on the next pass
			continue
		}

		merged, err := MergeBooked(current.Layout, layout)
		if err != nil {
			return nil, err
		}
		objects, err := toSeatDocuments(merged)
		if err != nil {
			return nil, err
		}
		next := *current
		next.Layout = merged
		next.Width = orDefault(width, current.Width)
		next.Height = orDefault(height, current.Height)
		next.Version = current.Version + 1
		next.UpdatedAt = now

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"eventId": eventID.String(), "version": current.Version},
			bson.M{"$set": bson.M{
				"layout":    layoutDocument{Objects: objects},
				"width":     next.Width,
				"height":    next.Height,
				"version":   next.Version,
				"updatedAt": now,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to replace seat map: %w", err)
		}
		if res.MatchedCount == 1 {
			return &SaveResult{SeatMap: &next, Created: false}, nil
		}

		if err := backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, apperrors.Conflict("seat map for event %s is busy, retry the save", eventID)
}

func (r *mongoRepository) MarkSeatsBooked(ctx context.Context, eventID uuid.UUID, seatNos []string, bookingID string) (*CommitResult, error) {
	filterEvent := bson.M{"eventId": eventID.String()}
	count, err := r.coll.CountDocuments(ctx, filterEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	if count == 0 {
		return nil, apperrors.NotFound("seat map for event", eventID.String())
	}

	won := make(map[string]bool, len(seatNos))
	for _, seatNo := range seatNos {
		if _, done := won[seatNo]; done {
			continue
		}
		filter := bson.M{
			"eventId": eventID.String(),
			"layout.objects": bson.M{"$elemMatch": bson.M{
				"data.seatNo": seatNo,
				"data.status": bson.M{"$ne": string(SeatBooked)},
			}},
		}
		update := bson.M{
			"$set": bson.M{
				"layout.objects.$[seat].data.status":    string(SeatBooked),
				"layout.objects.$[seat].data.bookingId": bookingID,
				"updatedAt":                             time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		}
		opts := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"seat.data.seatNo": seatNo}},
		})
		res, err := r.coll.UpdateOne(ctx, filter, update, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to commit seat %s: %w", seatNo, err)
		}
		won[seatNo] = res.ModifiedCount == 1
	}

	current, err := r.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFound("seat map for event", eventID.String())
	}

	result := &CommitResult{Booked: []string{}}
	seen := make(map[string]struct{}, len(seatNos))
	for _, seatNo := range seatNos {
		if _, dup := seen[seatNo]; dup {
			continue
		}
		seen[seatNo] = struct{}{}

		seat, ok := current.Layout.Find(seatNo)
		switch {
		case won[seatNo]:
			result.Booked = append(result.Booked, seatNo)
		case !ok:
			result.Missing = append(result.Missing, seatNo)
		case seat.Data.Status == SeatBooked && seat.Data.BookingID == bookingID && bookingID != "":
			result.Booked = append(result.Booked, seatNo)
		default:
			result.AlreadyBooked = append(result.AlreadyBooked, seatNo)
		}
	}
	return result, nil
}

func toSeatDocuments(layout Layout) ([]seatDocument, error) {
	docs := make([]seatDocument, 0, len(layout.Objects))
	for _, seat := range layout.Objects {
		price, err := primitive.ParseDecimal128(seat.Data.Price.String())
		if err != nil {
			return nil, fmt.Errorf("seat %s price: %w", seat.Data.SeatNo, err)
		}
		docs = append(docs, seatDocument{
			Left:   seat.Left,
			Top:    seat.Top,
			Width:  seat.Width,
			Height: seat.Height,
			Data: seatDataDocument{
				SeatNo:    seat.Data.SeatNo,
				Price:     price,
				Category:  string(seat.Data.Category),
				Status:    string(seat.Data.Status),
				BookingID: seat.Data.BookingID,
			},
		})
	}
	return docs, nil
}

func toDocument(sm *SeatMap) (seatMapDocument, error) {
	objects, err := toSeatDocuments(sm.Layout)
	if err != nil {
		return seatMapDocument{}, err
	}
	return seatMapDocument{
		ID:        sm.ID.String(),
		EventID:   sm.EventID.String(),
		Layout:    layoutDocument{Objects: objects},
		Width:     sm.Width,
		Height:    sm.Height,
		Version:   sm.Version,
		CreatedAt: sm.CreatedAt,
		UpdatedAt: sm.UpdatedAt,
	}, nil
}

func fromDocument(doc seatMapDocument) (*SeatMap, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid seat map id %q: %w", doc.ID, err)
	}
	eventID, err := uuid.Parse(doc.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", doc.EventID, err)
	}

	objects := make([]Seat, 0, len(doc.Layout.Objects))
	for _, s := range doc.Layout.Objects {
		price, err := decimal.NewFromString(s.Data.Price.String())
		if err != nil {
			return nil, fmt.Errorf("seat %s price: %w", s.Data.SeatNo, err)
		}
		objects = append(objects, Seat{
			Left:   s.Left,
			Top:    s.Top,
			Width:  s.Width,
			Height: s.Height,
			Data: SeatData{
				SeatNo:    s.Data.SeatNo,
				Price:     price,
				Category:  Category(s.Data.Category),
				Status:    SeatStatus(s.Data.Status),
				BookingID: s.Data.BookingID,
			},
		})
	}

	return &SeatMap{
		ID:        id,
		EventID:   eventID,
		Layout:    Layout{Objects: objects},
		Width:     doc.Width,
		Height:    doc.Height,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
