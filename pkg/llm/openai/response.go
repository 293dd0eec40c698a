package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// ParseStreamChunk decodes one streamed "data:" payload and returns the
// delta text of its first choice. A chunk without choices or content
// yields "".
func ParseStreamChunk(data []byte) (string, error) {
	var chunk goopenai.ChatCompletionStreamResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", fmt.Errorf("parsing stream chunk: %w", err)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

// ParseResponse decodes a whole (non-streamed) response body and returns
// the message text of its first choice. A body without choices yields "".
func ParseResponse(data []byte) (string, error) {
	var resp goopenai.ChatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	msg := resp.Choices[0].Message
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content, nil
	}

	// Some gateways answer with a content part array.
	var b strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == goopenai.ChatMessagePartTypeText {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
