package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/services"
	"github.com/Lllllllleong/resumind/internal/upload"
)

// Slack for multipart boundaries and form fields on top of the file limit.
const formOverheadBytes = 1 << 20

var (
	analyzerInstance *services.AnalyzerFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleAnalyzeResume", handleAnalyzeResume)
}

// main is required by the Go Functions Framework.
func main() {}

// handleAnalyzeResume accepts a multipart upload and streams pipeline
// statuses back as server-sent events.
func handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		analyzerInstance, initErr = services.NewAnalyzer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	req, files, err := parseForm(w, r, analyzerInstance.MaxUploadBytes())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("Could not parse upload form", "error", err)
		http.Error(w, "Bad Request: could not parse upload", http.StatusBadRequest)
		return
	}
	if _, err := analyzerInstance.Validate(req, files); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, upload.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	stream, err := services.NewStatusStream(w)
	if err != nil {
		http.Error(w, "Internal Server Error: streaming unsupported", http.StatusInternalServerError)
		return
	}

	// A run is never cancelled midway; a caller that disconnects only stops
	// receiving events.
	runCtx := context.WithoutCancel(r.Context())
	logCtx := slog.With("companyName", req.CompanyName, "jobTitle", req.JobTitle)
	resume, err := analyzerInstance.Process(runCtx, req, files, stream.Observer(logCtx))
	if err != nil {
		// The failure label was already streamed as the last status event.
		return
	}

	if err := stream.WriteComplete(resume); err != nil && stream.Lost() == nil {
		slog.Warn("Failed to write completion event", "error", err)
	}
}

// parseForm reads the job context and the uploaded files. Both camelCase and
// the hyphenated form field names are accepted.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*models.AnalyzeRequest, []upload.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(maxBytes + formOverheadBytes); err != nil {
		return nil, nil, err
	}

	field := func(names ...string) string {
		for _, n := range names {
			if v := r.FormValue(n); v != "" {
				return v
			}
		}
		return ""
	}
	req := &models.AnalyzeRequest{
		CompanyName:    field("companyName", "company-name"),
		JobTitle:       field("jobTitle", "job-title"),
		JobDescription: field("jobDescription", "job-description"),
	}

	var files []upload.File
	for _, fh := range r.MultipartForm.File["file"] {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
		files = append(files, upload.File{Name: fh.Filename, Data: data})
	}
	return req, files, nil
}
