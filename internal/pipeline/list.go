package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/resumind/internal/models"
)

// ListResumes returns every resume record stored under the resume prefix,
// including ones whose analysis never completed. Entries that fail to decode
// are logged and skipped.
func ListResumes(ctx context.Context, store RecordStore, logger *slog.Logger) ([]models.Resume, error) {
	return listByPrefix(ctx, store, models.RecordKeyPrefix, logger)
}

func listByPrefix(ctx context.Context, store RecordStore, prefix string, logger *slog.Logger) ([]models.Resume, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Accept the glob form "resume:*".
	prefix = strings.TrimSuffix(prefix, "*")

	entries, err := store.List(ctx, prefix, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list records with prefix %q: %w", prefix, err)
	}

	resumes := make([]models.Resume, 0, len(entries))
	for _, e := range entries {
		r, err := models.DecodeResume(e.Value)
		if err != nil {
			logger.Warn("Skipping malformed record.", "key", e.Key, "error", err)
			continue
		}
		resumes = append(resumes, *r)
	}
	return resumes, nil
}

// GetResume loads a single record by id.
func GetResume(ctx context.Context, store RecordStore, id string) (*models.Resume, error) {
	key := models.RecordKeyPrefix + id
	entries, err := store.List(ctx, key, true)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", key, err)
	}
	for _, e := range entries {
		if e.Key != key {
			continue
		}
		return models.DecodeResume(e.Value)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
