package llm

import "time"

// Turn represents one message exchanged in a conversation.
type Turn struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// Failed marks an assistant placeholder whose completion request
	// did not succeed. Failed turns are shown but never persisted.
	Failed bool `json:"failed,omitempty"`
}

// NewTurn creates a text-only turn stamped with ts.
func NewTurn(role Role, text string, ts time.Time) Turn {
	return Turn{
		Role:      role,
		Text:      text,
		Timestamp: ts,
	}
}

// HasAttachments reports whether the turn carries any images.
func (t Turn) HasAttachments() bool {
	return len(t.Attachments) > 0
}
