package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Lllllllleong/resumind/internal/models"
)

const categorySchema = `{
	"type": "object",
	"required": ["score", "tips"],
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 100},
		"tips": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "tip"],
				"properties": {
					"type": {"enum": ["good", "improve"]},
					"tip": {"type": "string"},
					"explanation": {"type": "string"}
				}
			}
		}
	}
}`

var feedbackSchemaJSON = `{
	"type": "object",
	"required": ["overallScore"],
	"properties": {
		"overallScore": {"type": "number", "minimum": 0, "maximum": 100},
		"ATS": ` + categorySchema + `,
		"toneAndStyle": ` + categorySchema + `,
		"content": ` + categorySchema + `,
		"structure": ` + categorySchema + `,
		"skills": ` + categorySchema + `
	}
}`

var feedbackSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(feedbackSchemaJSON))
})

// NormalizeContent collapses the two response shapes into one text value.
// A segment list contributes only its first segment.
func NormalizeContent(c models.Content) (string, error) {
	var text string
	switch c.Kind {
	case models.ContentText:
		text = c.Text
	case models.ContentSegments:
		if len(c.Segments) == 0 {
			return "", fmt.Errorf("%w: response has no segments", ErrMalformedResult)
		}
		text = c.Segments[0].Text
	default:
		return "", fmt.Errorf("%w: response has no content", ErrMalformedResult)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: response text is empty", ErrMalformedResult)
	}
	return text, nil
}

// ParseFeedback decodes the normalized response text into a Feedback,
// rejecting anything that is not a JSON object of the expected shape.
func ParseFeedback(text string) (*models.Feedback, error) {
	cleaned := cleanJSONBlock(text)

	schema, err := feedbackSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile feedback schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrMalformedResult, err)
	}
	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			fields = append(fields, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, strings.Join(fields, "; "))
	}

	var fb models.Feedback
	if err := json.Unmarshal([]byte(cleaned), &fb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	return &fb, nil
}

// cleanJSONBlock removes markdown code fences the model sometimes adds
// even in JSON mode.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
