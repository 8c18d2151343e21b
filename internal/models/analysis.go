package models

// ContentKind tags which shape an analysis response body arrived in.
type ContentKind int

const (
	ContentText ContentKind = iota + 1
	ContentSegments
)

// Segment is one part of a multi-part response. Non-text parts keep their
// type but leave Text empty.
type Segment struct {
	Type string
	Text string
}

// Content is the body of an analysis response: either a single text block or
// an ordered list of segments whose first element carries the text.
type Content struct {
	Kind     ContentKind
	Text     string
	Segments []Segment
}

// TextContent builds a single-block content value.
func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

// SegmentContent builds a multi-segment content value.
func SegmentContent(segments ...Segment) Content {
	return Content{Kind: ContentSegments, Segments: segments}
}

// AnalysisMessage wraps the content produced by the analysis model.
type AnalysisMessage struct {
	Content Content
}

// AnalysisResponse is what the analysis client returns on success.
type AnalysisResponse struct {
	Message AnalysisMessage
	Model   string
}
