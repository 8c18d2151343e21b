// Package pipeline drives a resume through upload, preview rendering,
// persistence and analysis, reporting a status at every step.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/raster"
)

const (
	sourceContentType = "application/pdf"
	defaultSourceName = "resume.pdf"
)

// ArtifactStore uploads blobs and returns a path other collaborators can
// resolve, for example a gs:// URI.
type ArtifactStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// RecordStore persists opaque string values by key.
type RecordStore interface {
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context, prefix string, includeValues bool) ([]models.Entry, error)
}

// AnalysisClient sends a stored document and instructions to the model.
type AnalysisClient interface {
	Feedback(ctx context.Context, documentRef, instructions string) (*models.AnalysisResponse, error)
}

// Rasterizer renders the first page of a document.
type Rasterizer interface {
	Rasterize(name string, data []byte) raster.Result
}

// Request is the caller input for one run.
type Request struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
	FileName       string
	File           []byte
}

// Orchestrator runs ingestion pipelines. It is safe for concurrent use as
// long as its collaborators are.
type Orchestrator struct {
	artifacts ArtifactStore
	records   RecordStore
	analysis  AnalysisClient
	raster    Rasterizer
	logger    *slog.Logger
	newID     func() string
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRasterizer replaces the default go-fitz rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(o *Orchestrator) { o.raster = r }
}

// New wires an Orchestrator from its collaborators.
func New(artifacts ArtifactStore, records RecordStore, analysis AnalysisClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		artifacts: artifacts,
		records:   records,
		analysis:  analysis,
		logger:    slog.Default(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.raster == nil {
		o.raster = raster.New()
	}
	return o
}

// run carries the per-invocation state. It is discarded when Run returns.
type run struct {
	observe Observer
	logCtx  *slog.Logger
	stage   Stage
}

func (r *run) enter(s Stage) {
	r.stage = s
	r.logCtx.Info("Stage started.", "stage", s.String())
	r.emit(Status{Stage: s})
}

func (r *run) emit(s Status) {
	if r.observe != nil {
		r.observe(s)
	}
}

func (r *run) fail(kind error, reason string, cause error) error {
	failedAt := r.stage
	r.stage = StageFailed
	r.logCtx.Error(reason, "stage", failedAt.String(), "error", cause)
	r.emit(Status{Stage: StageFailed, FailedAt: failedAt, Reason: reason})
	return &FailureError{Stage: failedAt, Reason: reason, Kind: kind, Err: cause}
}

// Run executes one ingestion run. Every stage is reported to observe before
// it starts; the last status is either Complete or Failed. Nothing written by
// earlier stages is removed when a later stage fails.
func (o *Orchestrator) Run(ctx context.Context, req Request, observe Observer) (*models.Resume, error) {
	id := o.newID()
	r := &run{
		observe: observe,
		logCtx:  o.logger.With("resumeId", id, "fileName", req.FileName),
	}
	sourceName := sanitizeName(req.FileName)

	// --- 1. Upload the source document ---
	r.enter(StageUploadingSource)
	resumePath, err := o.artifacts.Upload(ctx, id+"/"+sourceName, sourceContentType, req.File)
	if err != nil || resumePath == "" {
		return nil, r.fail(ErrUpload, ReasonUploadFile, orEmpty(err, "no path returned"))
	}

	// --- 2. Render the preview ---
	r.enter(StageRasterizing)
	preview := o.raster.Rasterize(sourceName, req.File)
	if preview.Err != nil || len(preview.Image) == 0 {
		return nil, r.fail(ErrConversion, ReasonConvert, orEmpty(preview.Err, "no image bytes"))
	}

	// --- 3. Upload the preview ---
	r.enter(StageUploadingPreview)
	imagePath, err := o.artifacts.Upload(ctx, id+"/"+preview.FileName, raster.ImageContentType, preview.Image)
	if err != nil || imagePath == "" {
		return nil, r.fail(ErrUpload, ReasonUploadImage, orEmpty(err, "no path returned"))
	}

	// --- 4. Persist the unanalyzed record ---
	r.enter(StagePersistingInitial)
	resume := &models.Resume{
		ID:             id,
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	}
	if err := o.save(ctx, resume); err != nil {
		return nil, r.fail(ErrPersistence, ReasonPersistInitial, err)
	}

	// --- 5. Analyze ---
	r.enter(StageAnalyzing)
	resp, err := o.analysis.Feedback(ctx, resumePath, PrepareInstructions(req.JobTitle, req.JobDescription))
	if err != nil || resp == nil || resp.Message.Content.Kind == 0 {
		return nil, r.fail(ErrAnalysis, ReasonAnalyze, orEmpty(err, "no result"))
	}

	// --- 6. Parse ---
	r.enter(StageParsingResult)
	text, err := NormalizeContent(resp.Message.Content)
	if err != nil {
		return nil, r.fail(ErrMalformedResult, ReasonParseFeedback, err)
	}
	feedback, err := ParseFeedback(text)
	if err != nil {
		return nil, r.fail(ErrMalformedResult, ReasonParseFeedback, err)
	}

	// --- 7. Persist the analyzed record under the same key ---
	r.enter(StagePersistingFinal)
	final := *resume
	final.Feedback = models.FeedbackSlot{Value: feedback}
	if err := o.save(ctx, &final); err != nil {
		return nil, r.fail(ErrPersistence, ReasonPersistFeedback, err)
	}

	r.stage = StageComplete
	r.logCtx.Info("Resume analysis complete.", "overallScore", feedback.OverallScore, "model", resp.Model)
	r.emit(Status{Stage: StageComplete, Resume: &final})
	return &final, nil
}

func (o *Orchestrator) save(ctx context.Context, resume *models.Resume) error {
	value, err := models.EncodeResume(resume)
	if err != nil {
		return err
	}
	if err := o.records.Set(ctx, resume.Key(), value); err != nil {
		return fmt.Errorf("failed to write record %s: %w", resume.Key(), err)
	}
	return nil
}

// sanitizeName keeps only the base name so the object stays under the run's prefix.
func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return defaultSourceName
	}
	return base
}

func orEmpty(err error, msg string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s", msg)
}
