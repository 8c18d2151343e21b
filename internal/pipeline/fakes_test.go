package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/raster"
)

type fakeArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
	// failOn makes uploads whose object name has this suffix fail.
	failOn string
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{objects: map[string][]byte{}}
}

func (f *fakeArtifacts) Upload(_ context.Context, objectName, _ string, data []byte) (string, error) {
	if f.failOn != "" && strings.HasSuffix(objectName, f.failOn) {
		return "", errors.New("bucket unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = append([]byte(nil), data...)
	return "gs://test-bucket/" + objectName, nil
}

func (f *fakeArtifacts) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.objects))
	for n := range f.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type fakeRecords struct {
	mu     sync.Mutex
	values map[string]string
	writes int
	// failWrite makes the n-th Set (1-based) fail; zero disables.
	failWrite int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{values: map[string]string{}}
}

func (f *fakeRecords) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failWrite != 0 && f.writes == f.failWrite {
		return errors.New("record store unavailable")
	}
	f.values[key] = value
	return nil
}

func (f *fakeRecords) List(_ context.Context, prefix string, includeValues bool) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Entry
	for k, v := range f.values {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		e := models.Entry{Key: k}
		if includeValues {
			e.Value = v
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type fakeAnalysis struct {
	resp     *models.AnalysisResponse
	err      error
	calls    int
	lastRef  string
	lastInst string
}

func (f *fakeAnalysis) Feedback(_ context.Context, documentRef, instructions string) (*models.AnalysisResponse, error) {
	f.calls++
	f.lastRef = documentRef
	f.lastInst = instructions
	return f.resp, f.err
}

type fakeRaster struct {
	err   error
	calls int
}

func (f *fakeRaster) Rasterize(name string, _ []byte) raster.Result {
	f.calls++
	if f.err != nil {
		return raster.Result{FileName: raster.ImageFileName(name), Err: f.err}
	}
	return raster.Result{Image: []byte("\x89PNG fake"), FileName: raster.ImageFileName(name)}
}

const validFeedback = `{
  "overallScore": 78,
  "ATS": {"score": 80, "tips": [{"type": "good", "tip": "Clear headings"}]},
  "toneAndStyle": {"score": 75, "tips": [{"type": "improve", "tip": "Fewer adjectives", "explanation": "Be concrete."}]},
  "content": {"score": 70, "tips": []},
  "structure": {"score": 85, "tips": []},
  "skills": {"score": 72, "tips": []}
}`

func textResponse(s string) *models.AnalysisResponse {
	return &models.AnalysisResponse{Message: models.AnalysisMessage{Content: models.TextContent(s)}}
}

type recorder struct {
	statuses []Status
}

func (r *recorder) observe(s Status) { r.statuses = append(r.statuses, s) }

func (r *recorder) stages() []string {
	out := make([]string, 0, len(r.statuses))
	for _, s := range r.statuses {
		out = append(out, s.Stage.String())
	}
	return out
}

func (r *recorder) last() Status {
	if len(r.statuses) == 0 {
		panic("no statuses recorded")
	}
	return r.statuses[len(r.statuses)-1]
}
