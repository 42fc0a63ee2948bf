package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"seatline/internal/authz"
	"seatline/internal/events"
	"seatline/internal/seatmaps"
	"seatline/internal/shared/config"
	"seatline/internal/shared/database"
	"seatline/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db       *database.DB
	cfg      *config.Config
	seatMaps seatmaps.Repository
}

func main() {
	_ = godotenv.Load()
	fmt.Println("🌱 Starting Seatline Database Seeder...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}
	if cfg.Booking.SeatMapStore == "mongo" {
		coll := db.MongoDB.Collection(cfg.Mongo.Collection)
		if err := seatmaps.EnsureIndexes(ctx, coll); err != nil {
			log.Fatalf("Failed to create seat map indexes: %v", err)
		}
		seeder.seatMaps = seatmaps.NewMongoRepository(coll, cfg.Booking.CommitRetries)
	} else {
		seeder.seatMaps = seatmaps.NewRepository(db.PostgreSQL, cfg.Booking.CommitRetries)
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(ctx); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates every table the booking flow writes
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{"bookings", "seat_maps", "events", "users"}

	tx := s.db.PostgreSQL.WithContext(ctx).Begin()
	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	if s.db.MongoDB != nil {
		if _, err := s.db.MongoDB.Collection(s.cfg.Mongo.Collection).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear seat map collection: %w", err)
		}
	}
	return nil
}

// SeedAll creates users, published events and a seat grid for each event
func (s *Seeder) SeedAll(ctx context.Context) error {
	userIDs, err := s.SeedUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	eventIDs, err := s.SeedEvents(ctx, userIDs["organizer"])
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedSeatMaps(ctx, eventIDs); err != nil {
		return fmt.Errorf("failed to seed seat maps: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates an admin, a verified organizer and an attendee, all with password "qwerty"
func (s *Seeder) SeedUsers(ctx context.Context) (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	organizer, err := users.NewOrganizerProfile("Asha Rao", "Rao Live Events")
	if err != nil {
		return nil, err
	}
	organizer.Organizer.VerificationStatus = users.VerificationVerified
	attendee, err := users.NewAttendeeProfile("Ravi", "Kumar")
	if err != nil {
		return nil, err
	}
	admin, err := users.NewAttendeeProfile("Admin", "User")
	if err != nil {
		return nil, err
	}

	usersData := []struct {
		key     string
		email   string
		role    authz.Role
		profile users.Profile
	}{
		{"admin", "admin@seatline.dev", authz.RoleAdmin, admin},
		{"organizer", "organizer@seatline.dev", authz.RoleOrganizer, organizer},
		{"user", "user@seatline.dev", authz.RoleUser, attendee},
	}

	userIDs := make(map[string]uuid.UUID)
	for _, userData := range usersData {
		user := users.User{
			ID:       uuid.New(),
			Email:    userData.email,
			Password: string(hashedPassword),
			Role:     userData.role,
			Profile:  userData.profile,
			IsActive: true,
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}
	return userIDs, nil
}

// SeedEvents creates published events owned by the organizer
func (s *Seeder) SeedEvents(ctx context.Context, organizerID uuid.UUID) ([]uuid.UUID, error) {
	fmt.Println("  🎭 Seeding events...")

	start := time.Now().UTC().Add(14 * 24 * time.Hour).Truncate(time.Hour)
	eventsData := []struct {
		name, city, venue string
		performers        []string
		offset            time.Duration
	}{
		{"Monsoon Jazz Night", "Mumbai", "NCPA Tata Theatre", []string{"Blue Lotus Trio"}, 0},
		{"Standup Saturday", "Bengaluru", "Chowdiah Hall", []string{"Kenny Sebastian", "Sumukhi Suresh"}, 7 * 24 * time.Hour},
	}

	var eventIDs []uuid.UUID
	for _, e := range eventsData {
		event := events.Event{
			ID:          uuid.New(),
			OrganizerID: organizerID,
			Name:        e.name,
			City:        e.city,
			VenueName:   e.venue,
			StartDate:   start.Add(e.offset),
			EndDate:     start.Add(e.offset + 3*time.Hour),
			Performers:  e.performers,
			IsPublished: true,
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&event).Error; err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", e.name, err)
		}
		eventIDs = append(eventIDs, event.ID)
		fmt.Printf("    ✅ Created event: %s (%s)\n", event.Name, event.ID)
	}
	return eventIDs, nil
}

// SeedSeatMaps stores a generated grid for each event, with the front row as premium
func (s *Seeder) SeedSeatMaps(ctx context.Context, eventIDs []uuid.UUID) error {
	fmt.Println("  💺 Seeding seat maps...")

	const rows, cols = 8, 12
	for _, eventID := range eventIDs {
		seats, err := seatmaps.GenerateGrid(rows, cols, decimal.NewFromInt(200))
		if err != nil {
			return err
		}
		for i := range seats[:cols] {
			seats[i].Data.Category = seatmaps.CategoryPremium
			seats[i].Data.Price = decimal.NewFromInt(450)
		}

		width, height := seatmaps.GridExtent(rows, cols)
		result, err := s.seatMaps.Upsert(ctx, eventID, seatmaps.Layout{Objects: seats}, width, height)
		if err != nil {
			return fmt.Errorf("failed to save seat map for %s: %w", eventID, err)
		}
		fmt.Printf("    ✅ Seat map v%d with %d seats for event %s\n", result.SeatMap.Version, len(seats), eventID)
	}
	return nil
}
