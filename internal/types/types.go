package types

// AnalysisResult is the structured review produced from an uploaded document.
// All three fields are non-empty on success.
type AnalysisResult struct {
	Rating      string `json:"ai_rating"`
	Suggestions string `json:"ai_suggestions"`
	Example     string `json:"ai_example"`

	// Attempts is the number of completion calls it took to get a full reply
	Attempts int `json:"-"`
}

// DirectAnalysisResult carries the model's unparsed advice for pasted text.
type DirectAnalysisResult struct {
	Suggestions string `json:"ai_suggestions"`
}

// AnalyzeTextRequest is the JSON body of a direct text analysis.
type AnalyzeTextRequest struct {
	ResumeText string `json:"resume_text"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
