package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"moodlens/internal/analytics"
	"moodlens/internal/config"
	"moodlens/internal/entries"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with moodlens's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all moodlens models for migration
func allModels() []any {
	return []any{
		&entries.Entry{},
	}
}

// TestConfig returns the application config forced into the test environment.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	config.Reset()
	t.Setenv("MOODLENS_ENV", config.Test)
	t.Cleanup(config.Reset)
	return config.GetConfig()
}

// SetupTestDB creates a test database with all moodlens models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by test name
// so multiple calls within the same test return the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", rootName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	t.Helper()

	cfg := TestConfig(t)
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set MOODLENS_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	return NewTestDBManager(db), GetLogger()
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// CreateTestEntries stores raw entries and fails the test on error
func CreateTestEntries(t *testing.T, db *gorm.DB, raw ...analytics.RawEntry) []entries.Entry {
	t.Helper()
	created, err := entries.ImportEntries(db, GetLogger(), raw)
	require.NoError(t, err)
	return created
}

// SampleEntries returns a small week of entries that exercises every stage
func SampleEntries() []analytics.RawEntry {
	return []analytics.RawEntry{
		{Mood: 8, Tags: "gym, sun", Description: "morning run", Time: "2024-01-01T07:30:00Z"},
		{Mood: 4, Tags: "work", Time: "2024-01-01T15:00:00Z"},
		{Mood: 9, Tags: []any{"gym", "family"}, Time: "2024-01-02T08:00:00Z"},
		{Mood: 7, Tags: "family,sun", Time: "2024-01-02T19:00:00Z"},
		{Mood: 2, Tags: "work,rain", Time: "2024-01-03T10:00:00Z"},
		{Mood: 3, Tags: "rain", Time: "2024-01-03T21:00:00Z"},
		{Mood: 8, Tags: "gym,sun", Time: "2024-01-05T07:45:00Z"},
		{Mood: "n/a", Tags: "work", Time: "2024-01-05T12:00:00Z"},
		{Mood: 6, Tags: "coffee", Time: "whenever"},
	}
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestServer creates a cartridge server over db with the given routes
// mounted and returns its Fiber app for app.Test requests.
func CreateTestServer(t *testing.T, db *gorm.DB, mount func(*cartridge.Server)) *fiber.App {
	t.Helper()

	appConfig := TestConfig(t)

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = NewTestDBManager(db)
	cfg.EnableSecFetchSite = false

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	mount(srv)
	return srv.App()
}
