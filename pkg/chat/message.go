package chat

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Placeholder is the text of an assistant message waiting for its first
// content frame.
const Placeholder = "⏳"

// FallbackMessage replaces a reply whose stream failed.
const FallbackMessage = "Sorry, the assistant is unavailable right now. Please try again."

// Message is one transcript entry.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
}

type wireMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type wireRequest struct {
	Messages []wireMessage `json:"messages"`
}
