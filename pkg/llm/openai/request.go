package openai

import (
	"github.com/papercomputeco/notechat/pkg/llm"
)

// Params are the sampling parameters copied into every request.
type Params struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	Stream       bool
	SystemPrompt string
}

// NewRequest builds the request body for turns. A system message built
// from SystemPrompt is prepended when it is non-empty. Turns with
// attachments are encoded as content part arrays.
func NewRequest(p Params, turns []llm.Turn) *Request {
	messages := make([]Message, 0, len(turns)+1)
	if p.SystemPrompt != "" {
		messages = append(messages, Message{
			Role:    string(llm.RoleSystem),
			Content: p.SystemPrompt,
		})
	}

	for _, t := range turns {
		messages = append(messages, newMessage(t))
	}

	return &Request{
		Model:       p.Model,
		Messages:    messages,
		Stream:      p.Stream,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

func newMessage(t llm.Turn) Message {
	if !t.HasAttachments() {
		return Message{Role: string(t.Role), Content: t.Text}
	}

	parts := make([]ContentPart, 0, len(t.Attachments)+1)
	if t.Text != "" {
		parts = append(parts, ContentPart{Type: PartTypeText, Text: t.Text})
	}
	for _, a := range t.Attachments {
		parts = append(parts, ContentPart{
			Type:     PartTypeImageURL,
			ImageURL: &ImageURL{URL: a.DataURL()},
		})
	}
	return Message{Role: string(t.Role), Content: parts}
}
