package completion

import (
	"net/url"
	"strings"
)

const (
	chatCompletionsPath = "/chat/completions"
	versionPrefix       = "/v1"
)

// ResolveEndpoint completes a user-supplied base URL into the
// chat-completions URL:
//
//	https://api.example.com          -> https://api.example.com/v1/chat/completions
//	https://api.example.com/v1       -> https://api.example.com/v1/chat/completions
//	https://gateway.example.com/a/b  -> unchanged
//
// Any other path is treated as a full endpoint and used verbatim.
func ResolveEndpoint(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.RawQuery != "" || u.Fragment != "" {
		return base
	}

	path := strings.TrimRight(u.Path, "/")
	trimmed := strings.TrimRight(base, "/")
	switch {
	case path == "":
		return trimmed + versionPrefix + chatCompletionsPath
	case strings.HasSuffix(path, versionPrefix):
		return trimmed + chatCompletionsPath
	default:
		return base
	}
}
