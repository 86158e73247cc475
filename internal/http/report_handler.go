package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"moodlens/internal/config"
	"moodlens/internal/metrics"
	"moodlens/internal/reporting"
)

// ReportShowAction computes the mood report over a fresh snapshot of the
// stored entries. The optional tz query parameter overrides the configured
// timezone for this request.
func ReportShowAction(ctx *cartridge.Context) error {
	var loc *time.Location
	if tz := ctx.Query("tz"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown timezone: " + tz,
				"code":  "INVALID_TIMEZONE",
			})
		}
	}

	m := metrics.Default()
	gen := reporting.NewGenerator(ctx.DB(), ctx.Logger, config.GetConfig(), m)

	report, err := gen.Generate(ctx.Ctx.Context(), reporting.SourceAPI, loc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Report computation timed out",
				"code":  "REPORT_TIMEOUT",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute report",
		})
	}

	if loc == nil {
		m.SetReport(report, time.Now())
	}

	ctx.Logger.Debug("Served report",
		slog.Int("entries", report.EntryCount),
		slog.String("timezone", report.Timezone))
	return ctx.JSON(report)
}
