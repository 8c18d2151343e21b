package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/raster/rastertest"
	"github.com/Lllllllleong/resumind/internal/upload"
)

func TestAnalyzer_Process(t *testing.T) {
	analyzer, _, records := newTestAnalyzer(okFeedback)
	req := validRequest

	var labels []string
	resume, err := analyzer.Process(context.Background(), &req,
		[]upload.File{{Name: "cv.pdf", Data: rastertest.PDF(1)}},
		func(s pipeline.Status) { labels = append(labels, s.Label()) })
	require.NoError(t, err)

	assert.Equal(t, 64, resume.Feedback.Value.OverallScore)
	assert.Equal(t, "Uploading the file...", labels[0])
	assert.Equal(t, "Analysis complete!", labels[len(labels)-1])
	assert.Len(t, records.values, 1)
}

func TestAnalyzer_RejectsInputBeforeRun(t *testing.T) {
	tests := []struct {
		name  string
		req   models.AnalyzeRequest
		files []upload.File
	}{
		{
			name:  "missing company",
			req:   models.AnalyzeRequest{JobTitle: "Engineer", JobDescription: "Build"},
			files: []upload.File{{Name: "cv.pdf", Data: rastertest.PDF(1)}},
		},
		{
			name:  "title too long",
			req:   models.AnalyzeRequest{CompanyName: "Acme", JobTitle: strings.Repeat("x", 201), JobDescription: "Build"},
			files: []upload.File{{Name: "cv.pdf", Data: rastertest.PDF(1)}},
		},
		{
			name:  "not a pdf",
			req:   validRequest,
			files: []upload.File{{Name: "cv.pdf", Data: []byte("plain text resume")}},
		},
		{
			name: "no file",
			req:  validRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer, artifacts, records := newTestAnalyzer(okFeedback)
			called := false
			_, err := analyzer.Process(context.Background(), &tt.req, tt.files, func(pipeline.Status) { called = true })
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.False(t, called, "no status should be emitted for rejected input")
			assert.Empty(t, artifacts.objects)
			assert.Empty(t, records.values)
		})
	}
}

func TestStatusStream_WritesNumberedEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := NewStatusStream(rec)
	require.NoError(t, err)

	observe := stream.Observer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	observe(pipeline.Status{Stage: pipeline.StageUploadingSource})
	observe(pipeline.Status{Stage: pipeline.StageFailed, FailedAt: pipeline.StageAnalyzing, Reason: pipeline.ReasonAnalyze})

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		"id: 1\nevent: status\ndata: {\"stage\":\"UploadingSource\",\"label\":\"Uploading the file...\"}\n\n"+
			"id: 2\nevent: status\ndata: {\"stage\":\"Failed\",\"label\":\"Failed: Failed to analyze resume\",\"failed\":true}\n\n",
		rec.Body.String())
	assert.NoError(t, stream.Lost())
}

func TestStatusStream_WriteComplete(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := NewStatusStream(rec)
	require.NoError(t, err)

	resume := &models.Resume{ID: "abc", CompanyName: "Acme"}
	require.NoError(t, stream.WriteComplete(resume))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "id: 1\nevent: complete\ndata: "))
	assert.Contains(t, body, `"status":"success"`)
	assert.Contains(t, body, `"id":"abc"`)
}

// brokenWriter fails every body write, as a closed connection does.
type brokenWriter struct {
	*httptest.ResponseRecorder
	writes int
}

func (w *brokenWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errors.New("broken pipe")
}

func TestStatusStream_StopsAfterClientIsGone(t *testing.T) {
	w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
	stream, err := NewStatusStream(w)
	require.NoError(t, err)

	observe := stream.Observer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	observe(pipeline.Status{Stage: pipeline.StageUploadingSource})
	observe(pipeline.Status{Stage: pipeline.StageRasterizing})
	require.Error(t, stream.WriteComplete(&models.Resume{ID: "abc"}))

	assert.Equal(t, 1, w.writes)
	assert.EqualError(t, stream.Lost(), "broken pipe")
}

type plainWriter struct{ http.ResponseWriter }

func TestStatusStream_RequiresFlusher(t *testing.T) {
	_, err := NewStatusStream(plainWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}
