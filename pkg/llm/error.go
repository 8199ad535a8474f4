// Package llm provides the internal representation of conversation turns
// exchanged with a hosted chat-completions model.
package llm

// ErrorResponse represents a failed request as returned to clients.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
