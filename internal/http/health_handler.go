package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"moodlens/internal/entries"
)

var errDatabaseUnavailable = errors.New("database connection unavailable")

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
	Entries   int64     `json:"entries"`
}

// HealthIndexAction reports database reachability and the stored entry count
func HealthIndexAction(ctx *cartridge.Context) error {
	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		DBStatus:  "ok",
	}

	if err := pingDatabase(ctx); err != nil {
		ctx.Logger.Error("Database health check failed", slog.Any("error", err))
		health.Status = "degraded"
		health.DBStatus = "error"
		return ctx.JSON(health)
	}

	count, err := entries.CountEntries(ctx.DBManager.GetConnection())
	if err != nil {
		ctx.Logger.Error("Failed to count entries for health check", slog.Any("error", err))
		health.Status = "degraded"
	}
	health.Entries = count

	return ctx.JSON(health)
}

func pingDatabase(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()
	if db == nil {
		return errDatabaseUnavailable
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
