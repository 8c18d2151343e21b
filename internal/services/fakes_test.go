package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/raster"
	"github.com/Lllllllleong/resumind/internal/upload"
)

type memArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemArtifacts() *memArtifacts { return &memArtifacts{objects: map[string][]byte{}} }

func (m *memArtifacts) Upload(_ context.Context, objectName, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uri := "gs://mem/" + objectName
	m.objects[uri] = data
	return uri, nil
}

func (m *memArtifacts) Download(_ context.Context, uri string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type memRecords struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemRecords() *memRecords { return &memRecords{values: map[string]string{}} }

func (m *memRecords) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memRecords) List(_ context.Context, prefix string, includeValues bool) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for k, v := range m.values {
		if strings.HasPrefix(k, prefix) {
			e := models.Entry{Key: k}
			if includeValues {
				e.Value = v
			}
			out = append(out, e)
		}
	}
	return out, nil
}

type stubAnalysis struct {
	text string
}

func (s *stubAnalysis) Feedback(context.Context, string, string) (*models.AnalysisResponse, error) {
	if s.text == "" {
		return nil, nil
	}
	return &models.AnalysisResponse{Message: models.AnalysisMessage{Content: models.TextContent(s.text)}}, nil
}

type stubRaster struct{}

func (stubRaster) Rasterize(name string, _ []byte) raster.Result {
	return raster.Result{Image: []byte("png"), FileName: raster.ImageFileName(name)}
}

func newTestAnalyzer(analysisText string) (*AnalyzerFunction, *memArtifacts, *memRecords) {
	artifacts := newMemArtifacts()
	records := newMemRecords()
	orch := pipeline.New(artifacts, records, &stubAnalysis{text: analysisText},
		pipeline.WithRasterizer(stubRaster{}),
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return NewAnalyzerWith(orch, upload.NewFilter(0)), artifacts, records
}

const okFeedback = `{"overallScore": 64, "ATS": {"score": 70, "tips": []}}`

var validRequest = models.AnalyzeRequest{
	CompanyName:    "Acme",
	JobTitle:       "Engineer",
	JobDescription: "Build things",
}
