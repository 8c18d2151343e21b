package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecordKeyPrefix namespaces resume records in the record store.
const RecordKeyPrefix = "resume:"

// Resume is the persisted record of one ingestion run.
// It is written twice: once with empty feedback after both artifacts are stored,
// and again once the analysis has been parsed.
type Resume struct {
	ID             string       `json:"id"`
	ResumePath     string       `json:"resumePath"`
	ImagePath      string       `json:"imagePath"`
	CompanyName    string       `json:"companyName"`
	JobTitle       string       `json:"jobTitle"`
	JobDescription string       `json:"jobDescription"`
	Feedback       FeedbackSlot `json:"feedback"`
}

// Key returns the record store key for the resume.
func (r *Resume) Key() string {
	return RecordKeyPrefix + r.ID
}

// Analyzed reports whether the run reached the final persistence step.
func (r *Resume) Analyzed() bool {
	return r.Feedback.Value != nil
}

// FeedbackSlot holds either nothing (run not analyzed) or a parsed Feedback.
// An empty slot is encoded as "" to stay readable by clients that store the
// unanalyzed marker as an empty string.
type FeedbackSlot struct {
	Value *Feedback
}

func (s FeedbackSlot) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(s.Value)
}

func (s *FeedbackSlot) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		s.Value = nil
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("feedback must be an object or empty string, got %.20q", trimmed)
	}
	var fb Feedback
	if err := json.Unmarshal(trimmed, &fb); err != nil {
		return fmt.Errorf("failed to decode feedback: %w", err)
	}
	s.Value = &fb
	return nil
}

// EncodeResume serializes a record into the opaque string stored under its key.
func EncodeResume(r *Resume) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resume %s: %w", r.ID, err)
	}
	return string(b), nil
}

// DecodeResume parses a value previously written by EncodeResume.
func DecodeResume(value string) (*Resume, error) {
	var r Resume
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume: %w", err)
	}
	if r.ID == "" {
		return nil, fmt.Errorf("resume record has no id")
	}
	return &r, nil
}
