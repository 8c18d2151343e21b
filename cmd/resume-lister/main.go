package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/services"
)

var (
	listerInstance *services.ListerFunction
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleListResumes", handleListResumes)
	functions.HTTP("HandleResumePreview", handleResumePreview)
}

// main is required by the Go Functions Framework.
func main() {}

func initLister() bool {
	once.Do(func() {
		listerInstance, initErr = services.NewLister(context.Background())
	})
	if initErr != nil {
		slog.Error("CRITICAL: Lister initialization failed", "error", initErr)
		return false
	}
	return true
}

// handleListResumes returns every stored resume record as JSON.
func handleListResumes(w http.ResponseWriter, r *http.Request) {
	if !initLister() {
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	res, err := listerInstance.List(r.Context())
	if err != nil {
		slog.Error("Failed to list resumes", "error", err)
		http.Error(w, "Internal Server Error: listing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// handleResumePreview returns the PNG preview for ?id=<resume id>.
func handleResumePreview(w http.ResponseWriter, r *http.Request) {
	if !initLister() {
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request: missing id", http.StatusBadRequest)
		return
	}

	data, err := listerInstance.Preview(r.Context(), id)
	if errors.Is(err, pipeline.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to load preview", "resumeId", id, "error", err)
		http.Error(w, "Internal Server Error: preview failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write preview", "resumeId", id, "error", err)
	}
}
