package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resumind/internal/models"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		content models.Content
		want    string
		wantErr bool
	}{
		{name: "text block", content: models.TextContent(`{"a":1}`), want: `{"a":1}`},
		{
			name: "first segment wins",
			content: models.SegmentContent(
				models.Segment{Type: "text", Text: "first"},
				models.Segment{Type: "text", Text: "second"},
			),
			want: "first",
		},
		{name: "no segments", content: models.SegmentContent(), wantErr: true},
		{name: "first segment without text", content: models.SegmentContent(models.Segment{Type: "image"}), wantErr: true},
		{name: "blank text", content: models.TextContent("  \n"), wantErr: true},
		{name: "absent content", content: models.Content{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeContent(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResult)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFeedback_Valid(t *testing.T) {
	fb, err := ParseFeedback(validFeedback)
	require.NoError(t, err)
	assert.Equal(t, 78, fb.OverallScore)
	require.Len(t, fb.ToneAndStyle.Tips, 1)
	assert.Equal(t, models.TipImprove, fb.ToneAndStyle.Tips[0].Type)
	assert.Equal(t, "Be concrete.", fb.ToneAndStyle.Tips[0].Explanation)
}

func TestParseFeedback_FencedBlock(t *testing.T) {
	fb, err := ParseFeedback("```json\n" + validFeedback + "\n```")
	require.NoError(t, err)
	assert.Equal(t, 78, fb.OverallScore)

	fb, err = ParseFeedback("```\n{\"overallScore\": 12}\n```")
	require.NoError(t, err)
	assert.Equal(t, 12, fb.OverallScore)
}

func TestParseFeedback_FractionalScores(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTotal int
		wantATS   int
	}{
		{name: "rounds up", text: `{"overallScore": 82.5, "ATS": {"score": 70.6, "tips": []}}`, wantTotal: 83, wantATS: 71},
		{name: "rounds down", text: `{"overallScore": 64.2, "ATS": {"score": 49.4, "tips": []}}`, wantTotal: 64, wantATS: 49},
		{name: "whole numbers unchanged", text: `{"overallScore": 90, "ATS": {"score": 100, "tips": []}}`, wantTotal: 90, wantATS: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := ParseFeedback(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, fb.OverallScore)
			assert.Equal(t, tt.wantATS, fb.ATS.Score)
		})
	}
}

func TestParseFeedback_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "prose", text: "The resume looks great!"},
		{name: "string literal", text: `"{\"overallScore\": 80}"`},
		{name: "array", text: `[{"overallScore": 80}]`},
		{name: "missing overall score", text: `{"ATS": {"score": 50, "tips": []}}`},
		{name: "score out of range", text: `{"overallScore": 180}`},
		{name: "score as string", text: `{"overallScore": "80"}`},
		{name: "bad tip type", text: `{"overallScore": 80, "skills": {"score": 3, "tips": [{"type": "meh", "tip": "x"}]}}`},
		{name: "truncated", text: `{"overallScore": 80, "ATS": {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := ParseFeedback(tt.text)
			assert.Nil(t, fb)
			assert.ErrorIs(t, err, ErrMalformedResult)
		})
	}
}

func TestPrepareInstructions(t *testing.T) {
	got := PrepareInstructions("Engineer", "Build things")
	assert.Contains(t, got, "The job title is: Engineer")
	assert.Contains(t, got, "The job description is: Build things")
	assert.Contains(t, got, `"overallScore"`)
}
