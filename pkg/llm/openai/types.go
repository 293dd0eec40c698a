// Package openai holds the wire format of the OpenAI-compatible
// chat-completions endpoint.
package openai

import "encoding/json"

// Request is the chat-completions request body.
//
// Temperature is always sent: 0 is a meaningful setting and must not be
// dropped by omitempty.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message is one role/content pair. Content is a string for text-only
// turns or a []ContentPart for multimodal turns.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal content array.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image, usually as a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// ProxyEnvelope is the body sent to a relay instead of the upstream
// endpoint. The relay performs the actual upstream call.
type ProxyEnvelope struct {
	URL     string          `json:"url"`
	APIKey  string          `json:"api_key"`
	Payload json.RawMessage `json:"payload"`
}
