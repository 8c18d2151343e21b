package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/resumind/internal/gcp"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/postgres"
	"github.com/Lllllllleong/resumind/internal/upload"
)

const (
	RecordStoreFirestore = "firestore"
	RecordStorePostgres  = "postgres"
)

// Config holds all configuration shared by the resume functions and the CLI.
type Config struct {
	ProjectID           string
	ArtifactBucket      string
	InboxBucket         string
	VertexAIRegion      string
	AnalysisModel       string
	RecordStore         string
	FirestoreCollection string
	DatabaseURL         string
	MaxUploadBytes      int64
}

// LoadConfig loads and validates all necessary environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ProjectID:           gcp.GetEnv("PROJECT_ID", ""),
		ArtifactBucket:      gcp.GetEnv("ARTIFACT_BUCKET", ""),
		InboxBucket:         gcp.GetEnv("INBOX_BUCKET", ""),
		VertexAIRegion:      gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		AnalysisModel:       gcp.GetEnv("ANALYSIS_MODEL", gcp.DefaultAnalysisModel),
		RecordStore:         gcp.GetEnv("RECORD_STORE", RecordStoreFirestore),
		FirestoreCollection: gcp.GetEnv("FIRESTORE_COLLECTION", "kv"),
		DatabaseURL:         gcp.GetEnv("DATABASE_URL", ""),
		MaxUploadBytes:      upload.DefaultMaxBytes,
	}

	if raw := gcp.GetEnv("MAX_UPLOAD_BYTES", ""); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", raw)
		}
		cfg.MaxUploadBytes = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and the record store selection.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if c.ArtifactBucket == "" {
		return fmt.Errorf("ARTIFACT_BUCKET environment variable must be set")
	}
	switch c.RecordStore {
	case RecordStoreFirestore:
	case RecordStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when RECORD_STORE=%s", RecordStorePostgres)
		}
	default:
		return fmt.Errorf("RECORD_STORE must be %q or %q, got %q", RecordStoreFirestore, RecordStorePostgres, c.RecordStore)
	}
	return nil
}

// Dependencies are the constructed clients behind the pipeline collaborators.
type Dependencies struct {
	Storage   *storage.Client
	Artifacts *gcp.ArtifactStore
	Records   pipeline.RecordStore
	Vertex    *gcp.VertexClient

	closers []func()
}

// NewDependencies builds the storage and record clients, and the Vertex
// client when withAnalysis is set.
func NewDependencies(ctx context.Context, cfg *Config, withAnalysis bool) (*Dependencies, error) {
	d := &Dependencies{}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	d.Storage = storageClient
	d.Artifacts = gcp.NewArtifactStore(storageClient, cfg.ArtifactBucket)
	d.closers = append(d.closers, func() { _ = storageClient.Close() })

	switch cfg.RecordStore {
	case RecordStorePostgres:
		pg, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			d.Close()
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			d.Close()
			return nil, err
		}
		d.Records = pg
		d.closers = append(d.closers, pg.Close)
	default:
		var fs *firestore.Client
		fs, err = gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		d.Records = gcp.NewRecordStore(fs, cfg.FirestoreCollection)
		d.closers = append(d.closers, func() { _ = fs.Close() })
	}

	if withAnalysis {
		vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.AnalysisModel)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		d.Vertex = vertexClient
		d.closers = append(d.closers, func() { _ = vertexClient.Close() })
	}

	slog.Info("Clients initialized.", "recordStore", cfg.RecordStore, "artifactBucket", cfg.ArtifactBucket, "analysis", withAnalysis)
	return d, nil
}

// Close releases every client in reverse creation order.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
