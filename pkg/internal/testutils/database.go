package testutils

import (
	"fmt"
	"testing"

	"git.solsynth.dev/hypernet/typeidea/pkg/internal/cache"
	"git.solsynth.dev/hypernet/typeidea/pkg/internal/database"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSecret = "typeidea-test-secret"

// SetupTestDB points database.C at a fresh in-memory SQLite database
// with every table migrated, the previous connection is restored on cleanup.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigration(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	previous := database.C
	database.C = db
	t.Cleanup(func() {
		database.C = previous
		sqlDB.Close()
	})

	viper.Set("security.secret", TestSecret)
	viper.Set("posts.detect_language", false)

	return db
}

// SetupTestCache installs a fresh ristretto store for the test.
func SetupTestCache(t *testing.T) {
	t.Helper()

	if err := cache.NewStore(); err != nil {
		t.Fatalf("Failed to initialize test cache: %v", err)
	}
	t.Cleanup(func() {
		cache.S = nil
	})
}
