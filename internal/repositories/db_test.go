package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the production
// schema. A single connection keeps every query on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{ID: ids.User(), FullName: name, Email: strings.ToLower(name) + "@example.com"}
	require.NoError(t, NewPostgresUserRepository(db).CreateUser(context.Background(), &u))
	return u
}

func loadUser(t *testing.T, db *gorm.DB, id string) models.User {
	t.Helper()
	u, err := NewPostgresUserRepository(db).GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return *u
}
