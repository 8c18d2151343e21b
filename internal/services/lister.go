package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
)

// PreviewReader fetches a stored artifact by the path the pipeline recorded.
type PreviewReader interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// ListerFunction serves stored resume records and their previews.
type ListerFunction struct {
	records  pipeline.RecordStore
	previews PreviewReader
	deps     *Dependencies
}

// NewLister creates a ListerFunction from environment configuration.
func NewLister(ctx context.Context) (*ListerFunction, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := NewDependencies(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	f := NewListerWith(deps.Records, deps.Artifacts)
	f.deps = deps
	return f, nil
}

// NewListerWith wires a ListerFunction around existing stores.
func NewListerWith(records pipeline.RecordStore, previews PreviewReader) *ListerFunction {
	return &ListerFunction{records: records, previews: previews}
}

// List returns all resume records, analyzed or not.
func (f *ListerFunction) List(ctx context.Context) (*models.ListResumesResponse, error) {
	resumes, err := pipeline.ListResumes(ctx, f.records, slog.Default())
	if err != nil {
		return nil, err
	}
	return &models.ListResumesResponse{Resumes: resumes, Count: len(resumes)}, nil
}

// Preview returns the PNG preview for one resume.
func (f *ListerFunction) Preview(ctx context.Context, id string) ([]byte, error) {
	resume, err := pipeline.GetResume(ctx, f.records, id)
	if err != nil {
		return nil, err
	}
	if resume.ImagePath == "" {
		return nil, fmt.Errorf("%w: %s has no preview", pipeline.ErrNotFound, id)
	}
	return f.previews.Download(ctx, resume.ImagePath)
}

// FetchPreviews downloads the previews of several resumes concurrently.
// Resumes without a preview path are skipped.
func (f *ListerFunction) FetchPreviews(ctx context.Context, resumes []models.Resume, limit int) (map[string][]byte, error) {
	if limit <= 0 {
		limit = 4
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	var mu sync.Mutex
	out := make(map[string][]byte, len(resumes))
	for _, r := range resumes {
		if r.ImagePath == "" {
			continue
		}
		eg.Go(func() error {
			data, err := f.previews.Download(gctx, r.ImagePath)
			if err != nil {
				return fmt.Errorf("resume %s: %w", r.ID, err)
			}
			mu.Lock()
			out[r.ID] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the underlying clients.
func (f *ListerFunction) Close() {
	if f.deps != nil {
		f.deps.Close()
	}
}
