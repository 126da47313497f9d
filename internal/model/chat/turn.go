package chat

// Turn roles. A well-formed conversation alternates starting with the user,
// but nothing here enforces that; error recovery can leave consecutive
// assistant turns and the orchestrator must keep working.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
