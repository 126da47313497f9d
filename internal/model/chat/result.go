package chat

// Result is the orchestrator's answer to one chat message. Field names match
// the wire contract consumed by the embedded widget.
type Result struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	Sources        []string `json:"sources"`
	// ConfidenceScore is the mean similarity of the retrieved passages,
	// clamped to [0,1]. It is a relevance proxy, not a calibrated probability.
	ConfidenceScore float64 `json:"confidence_score"`
	ShowContact     bool    `json:"show_contact"`
}
