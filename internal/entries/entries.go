// Package entries persists mood log entries and hands out immutable
// snapshots of them for report computation.
package entries

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"moodlens/internal/analytics"
	"moodlens/internal/models"
)

// Entry is a stored mood log record. Mood, tags and time are kept as the
// JSON fragments they arrived as, so a tag string stays a string and a tag
// list stays a list.
type Entry struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Mood        models.JSON `gorm:"type:text" json:"mood"`
	Tags        models.JSON `gorm:"type:text" json:"tags"`
	Description string      `json:"description"`
	Time        models.JSON `gorm:"type:text" json:"time"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

// EntryNotFoundError represents an error when an entry does not exist
type EntryNotFoundError struct {
	ID uint
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry not found: %d", e.ID)
}

// NewEntryNotFoundError creates a new EntryNotFoundError
func NewEntryNotFoundError(id uint) *EntryNotFoundError {
	return &EntryNotFoundError{ID: id}
}

// FromRaw converts an incoming record into its stored form.
func FromRaw(raw analytics.RawEntry) (*Entry, error) {
	mood, err := models.NewJSON(raw.Mood)
	if err != nil {
		return nil, fmt.Errorf("mood: %w", err)
	}
	tags, err := models.NewJSON(raw.Tags)
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	ts, err := models.NewJSON(raw.Time)
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	var description string
	switch d := raw.Description.(type) {
	case nil:
	case string:
		description = d
	default:
		description = fmt.Sprint(d)
	}

	return &Entry{Mood: mood, Tags: tags, Description: description, Time: ts}, nil
}

// Raw converts a stored entry back into the loosely typed record the
// analytics pipeline normalizes.
func (e Entry) Raw() (analytics.RawEntry, error) {
	mood, err := e.Mood.Decode()
	if err != nil {
		return analytics.RawEntry{}, fmt.Errorf("entry %d mood: %w", e.ID, err)
	}
	tags, err := e.Tags.Decode()
	if err != nil {
		return analytics.RawEntry{}, fmt.Errorf("entry %d tags: %w", e.ID, err)
	}
	ts, err := e.Time.Decode()
	if err != nil {
		return analytics.RawEntry{}, fmt.Errorf("entry %d time: %w", e.ID, err)
	}
	return analytics.RawEntry{Mood: mood, Tags: tags, Description: e.Description, Time: ts}, nil
}

// CreateEntry stores a single entry
func CreateEntry(db *gorm.DB, logger *slog.Logger, raw analytics.RawEntry) (*Entry, error) {
	created, err := ImportEntries(db, logger, []analytics.RawEntry{raw})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// ImportEntries stores a batch of entries in one write transaction. Either
// every entry is stored or none is.
func ImportEntries(db *gorm.DB, logger *slog.Logger, raw []analytics.RawEntry) ([]Entry, error) {
	if len(raw) == 0 {
		return []Entry{}, nil
	}

	now := time.Now().UTC()
	batch := make([]Entry, 0, len(raw))
	for i, r := range raw {
		entry, err := FromRaw(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
		entry.CreatedAt = now
		batch = append(batch, *entry)
	}

	err := models.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.CreateInBatches(&batch, 500).Error
	})
	if err != nil {
		logger.Error("Failed to store entries", slog.Int("count", len(batch)), slog.Any("error", err))
		return nil, fmt.Errorf("failed to store entries: %w", err)
	}

	logger.Debug("Stored entries", slog.Int("count", len(batch)))
	return batch, nil
}

// GetEntry retrieves an entry by its ID
func GetEntry(db *gorm.DB, id uint) (*Entry, error) {
	var entry Entry
	if err := db.First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewEntryNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying entry: %w", err)
	}
	return &entry, nil
}

// ListEntries returns stored entries ordered by ID. A limit of 0 returns all.
func ListEntries(db *gorm.DB, limit, offset int) ([]Entry, error) {
	query := db.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var result []Entry
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if result == nil {
		result = []Entry{}
	}
	return result, nil
}

// LoadSnapshot reads every entry once, in insertion order, as the raw
// records the analytics pipeline consumes.
func LoadSnapshot(db *gorm.DB) ([]analytics.RawEntry, error) {
	stored, err := ListEntries(db, 0, 0)
	if err != nil {
		return nil, err
	}

	snapshot := make([]analytics.RawEntry, 0, len(stored))
	for _, e := range stored {
		raw, err := e.Raw()
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		snapshot = append(snapshot, raw)
	}
	return snapshot, nil
}

// CountEntries returns the number of stored entries
func CountEntries(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&Entry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// DeleteEntriesOlderThan removes entries stored before cutoff, batchSize rows
// per write transaction, and returns how many were removed.
func DeleteEntriesOlderThan(db *gorm.DB, logger *slog.Logger, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var total int64
	for {
		var ids []uint
		if err := db.Model(&Entry{}).
			Where("created_at < ?", cutoff).
			Order("id ASC").
			Limit(batchSize).
			Pluck("id", &ids).Error; err != nil {
			return total, fmt.Errorf("failed to select expired entries: %w", err)
		}
		if len(ids) == 0 {
			return total, nil
		}

		var deleted int64
		err := models.PerformWrite(logger, db, func(tx *gorm.DB) error {
			result := tx.Where("id IN ?", ids).Delete(&Entry{})
			deleted = result.RowsAffected
			return result.Error
		})
		if err != nil {
			return total, fmt.Errorf("failed to delete expired entries: %w", err)
		}
		total += deleted

		if len(ids) < batchSize {
			return total, nil
		}
	}
}
