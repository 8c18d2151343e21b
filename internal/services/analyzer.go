package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/upload"
)

// ErrInvalidInput wraps rejections that happen before a run starts.
var ErrInvalidInput = errors.New("invalid input")

// AnalyzerFunction validates uploads and runs them through the pipeline.
type AnalyzerFunction struct {
	orchestrator *pipeline.Orchestrator
	filter       *upload.Filter
	validate     *validator.Validate
	deps         *Dependencies
}

// NewAnalyzer creates an AnalyzerFunction from environment configuration.
func NewAnalyzer(ctx context.Context) (*AnalyzerFunction, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := NewDependencies(ctx, cfg, true)
	if err != nil {
		return nil, err
	}
	orch := pipeline.New(deps.Artifacts, deps.Records, deps.Vertex, pipeline.WithLogger(slog.Default()))
	f := NewAnalyzerWith(orch, upload.NewFilter(cfg.MaxUploadBytes))
	f.deps = deps
	return f, nil
}

// NewAnalyzerWith wires an AnalyzerFunction around an existing orchestrator.
func NewAnalyzerWith(orch *pipeline.Orchestrator, filter *upload.Filter) *AnalyzerFunction {
	return &AnalyzerFunction{
		orchestrator: orch,
		filter:       filter,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks the job context and the uploaded files without starting a run.
func (f *AnalyzerFunction) Validate(req *models.AnalyzeRequest, files []upload.File) (*upload.File, error) {
	if err := f.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	file, err := f.filter.Accept(files)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return file, nil
}

// Process validates the input and runs one pipeline, forwarding every status
// to observe.
func (f *AnalyzerFunction) Process(ctx context.Context, req *models.AnalyzeRequest, files []upload.File, observe pipeline.Observer) (*models.Resume, error) {
	file, err := f.Validate(req, files)
	if err != nil {
		return nil, err
	}

	logCtx := slog.With("companyName", req.CompanyName, "jobTitle", req.JobTitle, "fileName", file.Name)
	logCtx.Info("Starting resume analysis.", "sizeBytes", len(file.Data))

	return f.orchestrator.Run(ctx, pipeline.Request{
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		FileName:       file.Name,
		File:           file.Data,
	}, observe)
}

// MaxUploadBytes is the largest file the analyzer accepts.
func (f *AnalyzerFunction) MaxUploadBytes() int64 {
	return f.filter.MaxBytes
}

// Close releases the underlying clients.
func (f *AnalyzerFunction) Close() {
	if f.deps != nil {
		f.deps.Close()
	}
}
