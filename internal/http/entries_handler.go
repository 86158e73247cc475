package http

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"moodlens/internal/analytics"
	"moodlens/internal/entries"
	"moodlens/internal/metrics"
)

const (
	defaultEntriesPageSize = 100
	maxEntriesPageSize     = 1000
)

// EntriesCreateAction stores one entry object or an array of entries.
// Malformed field values are accepted as they are and excluded later by the
// report; only a body that is not an entry or a list of entries is rejected.
func EntriesCreateAction(ctx *cartridge.Context) error {
	raw, err := analytics.DecodeEntryOrList(ctx.Body())
	if err != nil {
		if errors.Is(err, analytics.ErrContractViolation) {
			ctx.Logger.Warn("Rejected entry payload", slog.Any("error", err))
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "CONTRACT_VIOLATION",
			})
		}
		ctx.Logger.Error("Failed to decode entries", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	created, err := entries.ImportEntries(ctx.DB(), ctx.Logger, raw)
	if err != nil {
		ctx.Logger.Error("Failed to store entries", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store entries",
		})
	}

	metrics.Default().RecordIngested(len(created))

	ids := make([]uint, len(created))
	for i, e := range created {
		ids[i] = e.ID
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Entries stored",
		"count":   len(created),
		"ids":     ids,
	})
}

// EntriesIndexAction lists stored entries in insertion order.
func EntriesIndexAction(ctx *cartridge.Context) error {
	limit, err := strconv.Atoi(ctx.Query("limit", strconv.Itoa(defaultEntriesPageSize)))
	if err != nil || limit < 1 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
			"code":  "INVALID_PAGINATION",
		})
	}
	if limit > maxEntriesPageSize {
		limit = maxEntriesPageSize
	}

	offset, err := strconv.Atoi(ctx.Query("offset", "0"))
	if err != nil || offset < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "offset must be a non-negative integer",
			"code":  "INVALID_PAGINATION",
		})
	}

	db := ctx.DB()
	list, err := entries.ListEntries(db, limit, offset)
	if err != nil {
		ctx.Logger.Error("Failed to list entries", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list entries",
		})
	}

	total, err := entries.CountEntries(db)
	if err != nil {
		ctx.Logger.Error("Failed to count entries", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count entries",
		})
	}

	return ctx.JSON(fiber.Map{
		"entries": list,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// EntryShowAction returns a single stored entry.
func EntryShowAction(ctx *cartridge.Context) error {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
			"code":  "INVALID_ID",
		})
	}

	entry, err := entries.GetEntry(ctx.DB(), uint(id))
	if err != nil {
		var notFound *entries.EntryNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "ENTRY_NOT_FOUND",
			})
		}
		ctx.Logger.Error("Failed to get entry", slog.Uint64("id", id), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get entry",
		})
	}

	return ctx.JSON(entry)
}
