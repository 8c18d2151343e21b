package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Lllllllleong/resumind/internal/gcp"
	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/upload"
)

// Object metadata keys carrying the job context of an inbox upload.
const (
	MetaCompanyName    = "companyName"
	MetaJobTitle       = "jobTitle"
	MetaJobDescription = "jobDescription"
)

// GCSEvent is the payload of a GCS event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ObjectReader loads an inbox object and its custom metadata.
type ObjectReader func(ctx context.Context, bucket, object string) ([]byte, map[string]string, error)

// UploadTriggerFunction runs the pipeline for resumes dropped into the inbox bucket.
type UploadTriggerFunction struct {
	analyzer    *AnalyzerFunction
	readObject  ObjectReader
	inboxBucket string
	deps        *Dependencies
}

// NewUploadTrigger creates an UploadTriggerFunction from environment configuration.
func NewUploadTrigger(ctx context.Context) (*UploadTriggerFunction, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.InboxBucket == "" {
		return nil, fmt.Errorf("INBOX_BUCKET environment variable must be set")
	}
	deps, err := NewDependencies(ctx, cfg, true)
	if err != nil {
		return nil, err
	}
	orch := pipeline.New(deps.Artifacts, deps.Records, deps.Vertex, pipeline.WithLogger(slog.Default()))
	reader := func(ctx context.Context, bucket, object string) ([]byte, map[string]string, error) {
		return gcp.ReadObject(ctx, deps.Storage, bucket, object)
	}
	f := NewUploadTriggerWith(NewAnalyzerWith(orch, upload.NewFilter(cfg.MaxUploadBytes)), reader, cfg.InboxBucket)
	f.deps = deps
	slog.Info("Upload trigger initialized.", "inboxBucket", cfg.InboxBucket)
	return f, nil
}

// NewUploadTriggerWith wires an UploadTriggerFunction around an existing analyzer.
func NewUploadTriggerWith(analyzer *AnalyzerFunction, reader ObjectReader, inboxBucket string) *UploadTriggerFunction {
	return &UploadTriggerFunction{analyzer: analyzer, readObject: reader, inboxBucket: inboxBucket}
}

// Process handles one finalized inbox object. Rejected uploads and failed runs
// are logged and acknowledged so the event is not redelivered; only failures
// to read the object are returned.
func (f *UploadTriggerFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if e.Bucket != f.inboxBucket {
		logCtx.Warn("Ignoring event from unexpected bucket.", "inboxBucket", f.inboxBucket)
		return nil
	}
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Ignoring non-PDF object.")
		return nil
	}

	data, meta, err := f.readObject(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to read inbox object", "error", err)
		return err
	}

	req := &models.AnalyzeRequest{
		CompanyName:    meta[MetaCompanyName],
		JobTitle:       meta[MetaJobTitle],
		JobDescription: meta[MetaJobDescription],
	}
	files := []upload.File{{Name: path.Base(e.Name), Data: data}}

	resume, err := f.analyzer.Process(ctx, req, files, func(s pipeline.Status) {
		logCtx.Info("Pipeline status.", "stage", s.Stage.String(), "label", s.Label())
	})
	switch {
	case errors.Is(err, ErrInvalidInput):
		logCtx.Warn("Rejected inbox upload.", "error", err)
		return nil
	case err != nil:
		logCtx.Error("Resume pipeline failed.", "error", err)
		return nil
	}

	logCtx.Info("Resume analyzed from inbox.", "resumeId", resume.ID)
	return nil
}

// Close releases the underlying clients.
func (f *UploadTriggerFunction) Close() {
	if f.deps != nil {
		f.deps.Close()
	}
}
