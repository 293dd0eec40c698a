package llm

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps a role name to a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	case RoleSystem:
		return RoleSystem, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

// Attachment is an image passed through to the completion endpoint.
// Its bytes are never interpreted beyond base64 encoding.
type Attachment struct {
	MediaType string `json:"media_type"` // MIME type (e.g., "image/png")
	Data      []byte `json:"data"`
}

// DataURL returns the attachment as a base64 data URL.
func (a Attachment) DataURL() string {
	mediaType := a.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// ReadAttachment loads an image file. The media type is sniffed from the
// file content and must be an image type.
func ReadAttachment(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}

	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return Attachment{}, fmt.Errorf("attachment %s is %s, not an image", path, mediaType)
	}

	return Attachment{MediaType: mediaType, Data: data}, nil
}
