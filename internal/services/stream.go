package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming not supported")

// Event names written to the analyze stream.
const (
	EventStatus   = "status"
	EventComplete = "complete"
)

// StatusStream writes the statuses of one run as server-sent events. Every
// event carries an increasing id so a client can tell whether it missed one.
// Once a write fails the client is treated as gone and later events are
// dropped; the run itself is not affected.
type StatusStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
	lost    error
}

// NewStatusStream sets the event-stream headers on w.
func NewStatusStream(w http.ResponseWriter) (*StatusStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &StatusStream{w: w, flusher: flusher}, nil
}

// WriteStatus sends one pipeline status.
func (s *StatusStream) WriteStatus(st pipeline.Status) error {
	return s.write(EventStatus, st.Event())
}

// WriteComplete sends the final record of a successful run.
func (s *StatusStream) WriteComplete(resume *models.Resume) error {
	return s.write(EventComplete, models.AnalyzeResponse{Status: "success", Resume: resume})
}

// Observer adapts the stream to a pipeline observer. Write errors are logged
// once, when the client is first found to be gone.
func (s *StatusStream) Observer(logCtx *slog.Logger) pipeline.Observer {
	return func(st pipeline.Status) {
		if err := s.WriteStatus(st); err != nil && !errors.Is(err, errClientGone) {
			logCtx.Warn("Client stopped receiving status events.", "stage", st.Stage.String(), "error", err)
		}
	}
}

// Lost reports the write error that ended delivery, if any.
func (s *StatusStream) Lost() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

var errClientGone = errors.New("client no longer receiving events")

func (s *StatusStream) write(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost != nil {
		return errClientGone
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, data); err != nil {
		s.lost = err
		return err
	}
	s.flusher.Flush()
	return nil
}
