package transcript

import (
	"fmt"

	"github.com/papercomputeco/notechat/pkg/llm"
)

// Labels are the localized speaker names written in turn headers, plus
// the prefix of the message shown when a request fails.
type Labels struct {
	User      string
	Assistant string
	System    string
	Failure   string
}

var (
	English = Labels{
		User:      "You",
		Assistant: "Assistant",
		System:    "System",
		Failure:   "Request failed",
	}

	Chinese = Labels{
		User:      "我",
		Assistant: "AI",
		System:    "系统",
		Failure:   "请求失败",
	}
)

// languages maps a language code to its label set.
var languages = map[string]Labels{
	"en": English,
	"zh": Chinese,
}

// LabelsFor returns the label set for a language code.
func LabelsFor(lang string) (Labels, error) {
	l, ok := languages[lang]
	if !ok {
		return Labels{}, fmt.Errorf("unsupported language %q", lang)
	}
	return l, nil
}

// Languages returns the supported language codes.
func Languages() []string {
	return []string{"en", "zh"}
}

// Speaker returns the label written for role.
func (l Labels) Speaker(role llm.Role) string {
	switch role {
	case llm.RoleAssistant:
		return l.Assistant
	case llm.RoleSystem:
		return l.System
	default:
		return l.User
	}
}

// FailureMessage is the text that replaces an assistant placeholder when
// its request finally fails.
func (l Labels) FailureMessage(err error) string {
	return fmt.Sprintf("%s: %v", l.Failure, err)
}
