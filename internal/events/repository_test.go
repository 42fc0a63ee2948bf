package events

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestRepository_ListPublishedSearch(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	where := `WHERE is_published = \$1 AND LOWER\(city\) = LOWER\(\$2\) AND \(name ILIKE \$3 OR description ILIKE \$4\)`

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events" ` + where).
		WithArgs(true, "Pune", "%jazz%", "%jazz%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "events" ` + where + ` ORDER BY start_date ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city"}).AddRow(id.String(), "Jazz Night", "Pune"))

	events, total, err := NewRepository(db).ListPublished(context.Background(), ListEventsQuery{City: "Pune", Search: "jazz", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "Jazz Night", events[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%jazz%", likePattern("jazz"))
	assert.Equal(t, `%100\% live\_set%`, likePattern("100% live_set"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
