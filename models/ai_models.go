package models

// AnalyzeRequest asks for a feasibility report on one district. District is
// the display name in the session's language.
type AnalyzeRequest struct {
	District string `json:"district"`
	Lang     string `json:"lang,omitempty"`
}

// RenderRequest turns already generated report text into an HTML document.
type RenderRequest struct {
	District string `json:"district"`
	Lang     string `json:"lang,omitempty"`
	Text     string `json:"text"`
}

// DistrictsResponse lists the selectable districts.
type DistrictsResponse struct {
	Locale    string   `json:"locale"`
	Districts []string `json:"districts"`
}

// Stream event types written to an analysis stream, one JSON object per line.
const (
	StreamFragment = "fragment"
	StreamReset    = "reset"
	StreamDone     = "done"
	StreamError    = "error"
)

// StreamEvent is one line of an analysis stream.
type StreamEvent struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Message string         `json:"message,omitempty"`
	Report  *ReportSummary `json:"report,omitempty"`
	Metrics interface{}    `json:"metrics,omitempty"`
}

// ReportSummary closes a successful stream.
type ReportSummary struct {
	ID       string `json:"id"`
	District string `json:"district"`
	Locale   string `json:"locale"`
	Verdict  string `json:"verdict"`
	FileName string `json:"fileName"`
}
