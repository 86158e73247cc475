package http

import (
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/karloscodes/cartridge"

	"moodlens/internal/metrics"
)

var metricsHandler = adaptor.HTTPHandler(metrics.Default().Handler())

// MetricsIndexAction serves the Prometheus exposition format
func MetricsIndexAction(ctx *cartridge.Context) error {
	return metricsHandler(ctx.Ctx)
}
