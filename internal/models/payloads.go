package models

// These structs define the JSON payloads exchanged with the HTTP functions.

// AnalyzeRequest carries the job context submitted alongside a resume upload.
type AnalyzeRequest struct {
	CompanyName    string `json:"companyName" validate:"required,max=200"`
	JobTitle       string `json:"jobTitle" validate:"required,max=200"`
	JobDescription string `json:"jobDescription" validate:"required,max=20000"`
}

// StatusEvent is one progress line streamed back to the caller.
type StatusEvent struct {
	Stage  string `json:"stage"`
	Label  string `json:"label"`
	Failed bool   `json:"failed,omitempty"`
}

// AnalyzeResponse is the final line of a successful analyze stream.
type AnalyzeResponse struct {
	Status string  `json:"status"`
	Resume *Resume `json:"resume"`
}

// ListResumesResponse is the output of the resume-lister function.
type ListResumesResponse struct {
	Resumes []Resume `json:"resumes"`
	Count   int      `json:"count"`
}
