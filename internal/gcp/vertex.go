package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/resumind/internal/models"
)

// --- Resume Analysis Model Prompts ---
const AnalysisSystemPrompt = "You are an expert recruiter and applicant tracking system. Your task is to review the attached resume against the target job and return a structured assessment. You must output your response as a single valid JSON object."

const DefaultAnalysisModel = "gemini-1.5-pro"

// VertexClient holds the pre-configured generative model used for resume analysis.
type VertexClient struct {
	AnalysisModel *genai.GenerativeModel
	modelName     string
	baseClient    *genai.Client
}

// NewVertexClient creates a new client holding the analysis model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultAnalysisModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	analysisModel := baseClient.GenerativeModel(modelName)
	analysisModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(AnalysisSystemPrompt)},
	}
	analysisModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	analysisModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	}

	return &VertexClient{
		AnalysisModel: analysisModel,
		modelName:     modelName,
		baseClient:    baseClient,
	}, nil
}

// Feedback asks the model to analyze the PDF stored at documentRef (a gs:// URI).
func (c *VertexClient) Feedback(ctx context.Context, documentRef, instructions string) (*models.AnalysisResponse, error) {
	filePart := genai.FileData{
		MIMEType: "application/pdf",
		FileURI:  documentRef,
	}

	resp, err := c.AnalysisModel.GenerateContent(ctx, filePart, genai.Text(instructions))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	content, ok := contentFromResponse(resp)
	if !ok {
		return nil, fmt.Errorf("gemini returned no content for %s", documentRef)
	}
	return &models.AnalysisResponse{
		Message: models.AnalysisMessage{Content: content},
		Model:   c.modelName,
	}, nil
}

// contentFromResponse maps the first candidate onto the two-shape content
// value: a lone text part becomes a text block, anything else a segment list.
func contentFromResponse(resp *genai.GenerateContentResponse) (models.Content, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return models.Content{}, false
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 1 {
		if txt, ok := parts[0].(genai.Text); ok {
			return models.TextContent(string(txt)), true
		}
	}

	segments := make([]models.Segment, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case genai.Text:
			segments = append(segments, models.Segment{Type: "text", Text: string(p)})
		case genai.Blob:
			segments = append(segments, models.Segment{Type: "blob"})
		case genai.FunctionCall:
			segments = append(segments, models.Segment{Type: "functionCall"})
		default:
			segments = append(segments, models.Segment{Type: fmt.Sprintf("%T", p)})
		}
	}
	return models.SegmentContent(segments...), true
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
