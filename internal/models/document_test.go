package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResume_EmptyFeedbackIsEmptyString(t *testing.T) {
	r := &Resume{ID: "abc", ResumePath: "gs://b/abc/cv.pdf", ImagePath: "gs://b/abc/cv.png"}

	value, err := EncodeResume(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(value), &raw))
	assert.Equal(t, "", raw["feedback"])
	assert.Equal(t, "gs://b/abc/cv.pdf", raw["resumePath"])
	assert.Equal(t, "resume:abc", r.Key())
	assert.False(t, r.Analyzed())
}

func TestEncodeResume_FeedbackIsObject(t *testing.T) {
	r := &Resume{ID: "abc", Feedback: FeedbackSlot{Value: &Feedback{OverallScore: 81}}}

	value, err := EncodeResume(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(value), &raw))
	fb, ok := raw["feedback"].(map[string]any)
	require.True(t, ok, "feedback should be encoded as an object")
	assert.EqualValues(t, 81, fb["overallScore"])
}

func TestDecodeResume(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantErr      bool
		wantAnalyzed bool
	}{
		{name: "empty feedback", value: `{"id":"1","feedback":""}`},
		{name: "null feedback", value: `{"id":"1","feedback":null}`},
		{name: "missing feedback", value: `{"id":"1"}`},
		{name: "object feedback", value: `{"id":"1","feedback":{"overallScore":70}}`, wantAnalyzed: true},
		{name: "string feedback", value: `{"id":"1","feedback":"great"}`, wantErr: true},
		{name: "not json", value: `{"id":`, wantErr: true},
		{name: "no id", value: `{"feedback":""}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeResume(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAnalyzed, r.Analyzed())
		})
	}
}
