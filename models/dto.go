package models

// SummarizeRequest is what the shell collects from the user.
type SummarizeRequest struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key,omitempty"`
}

// SummarizeResponse is the API answer for a finished run.
type SummarizeResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Method      Method    `json:"method"`
	MethodLabel string    `json:"method_label"`
	Summary     string    `json:"summary"`
	KeyPoints   []string  `json:"key_points"`
	Markdown    string    `json:"markdown"`
	Video       VideoInfo `json:"video"`
	Warnings    []string  `json:"warnings,omitempty"`
	Progress    []string  `json:"progress,omitempty"`
	DownloadURL string    `json:"download_url"`
}

// NewSummarizeResponse builds a response from a stored report.
func NewSummarizeResponse(r *Report, warnings, progress []string) *SummarizeResponse {
	return &SummarizeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Method:      r.Summary.Method,
		MethodLabel: r.Summary.Label(),
		Summary:     r.Summary.Body,
		KeyPoints:   r.Summary.KeyPoints,
		Markdown:    r.Markdown,
		Video:       r.Video,
		Warnings:    warnings,
		Progress:    progress,
		DownloadURL: "/api/reports/" + r.ID + "/download",
	}
}
