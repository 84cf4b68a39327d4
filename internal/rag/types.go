package rag

// AskRequest is a question about a specific page, asked by a specific user.
type AskRequest struct {
	UserID   string
	URL      string
	Question string
}

// AskResponse is the answer plus its provenance. Sources maps each source URL
// to the snippets of retrieved text that supported the answer. Confidence is
// 0.0 for every degraded answer (blocked site, nothing indexed, nothing
// relevant) and a fixed high value otherwise.
type AskResponse struct {
	Answer     string              `json:"answer"`
	AnswerHTML string              `json:"answer_html,omitempty"`
	Sources    map[string][]string `json:"sources"`
	Confidence float64             `json:"confidence"`
}
