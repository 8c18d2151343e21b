package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrUpload          = errors.New("artifact upload failed")
	ErrConversion      = errors.New("document conversion failed")
	ErrPersistence     = errors.New("record persistence failed")
	ErrAnalysis        = errors.New("analysis failed")
	ErrMalformedResult = errors.New("malformed analysis result")

	ErrNotFound = errors.New("resume not found")
)

// Failure reasons shown to the caller verbatim after "Failed: ".
const (
	ReasonUploadFile      = "Failed to upload file"
	ReasonConvert         = "Failed to convert document to image"
	ReasonUploadImage     = "Failed to upload image"
	ReasonPersistInitial  = "Failed to save resume data"
	ReasonAnalyze         = "Failed to analyze resume"
	ReasonParseFeedback   = "Failed to parse analysis result"
	ReasonPersistFeedback = "Failed to save feedback"
)

// FailureError is returned by Run when a stage fails. Kind is one of the
// Err* sentinels above; Err is the underlying cause and may be nil.
type FailureError struct {
	Stage  Stage
	Reason string
	Kind   error
	Err    error
}

func (e *FailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed: %s (%s): %v", e.Reason, e.Stage, e.Err)
	}
	return fmt.Sprintf("Failed: %s (%s)", e.Reason, e.Stage)
}

func (e *FailureError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Label returns the status text for the failure.
func (e *FailureError) Label() string {
	return "Failed: " + e.Reason
}
