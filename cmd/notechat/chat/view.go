package chatcmder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/notechat/pkg/cliui"
	"github.com/papercomputeco/notechat/pkg/llm"
)

var (
	userLabel      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	systemLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("57")).Bold(true).Padding(0, 1)
	inputBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// renderer turns conversation turns into terminal markdown. Settled turns
// are cached by content; the cache is dropped when the width changes.
type renderer struct {
	style string
	width int
	tr    *glamour.TermRenderer
	cache map[string]string
}

func newRenderer(style string) *renderer {
	r := &renderer{style: style, cache: map[string]string{}}
	r.setWidth(80)
	return r
}

func (r *renderer) setWidth(width int) {
	if width <= 0 || width == r.width {
		return
	}
	r.width = width
	r.cache = map[string]string{}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		r.tr = nil
		return
	}
	r.tr = tr
}

func (r *renderer) markdown(text string) string {
	if r.tr == nil {
		return text
	}
	if out, ok := r.cache[text]; ok {
		return out
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")
	r.cache[text] = out
	return out
}

// conversation renders every turn. The last assistant turn is drawn raw
// while streaming since partial markdown rarely renders well.
func (r *renderer) conversation(turns []llm.Turn, streaming bool) string {
	if len(turns) == 0 {
		return cliui.DimStyle.Render("  Start typing. enter sends, alt+enter adds a line.")
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label(turn))
		b.WriteString("\n")

		live := streaming && i == len(turns)-1 && turn.Role == llm.RoleAssistant
		switch {
		case live && turn.Text == "":
			b.WriteString(cliui.DimStyle.Render("  ..."))
		case live:
			b.WriteString(turn.Text)
		case turn.Failed && turn.Text == "":
			b.WriteString(cliui.ErrorStyle.Render("  request failed, ctrl+r to retry"))
		default:
			b.WriteString(r.markdown(turn.Text))
		}

		for _, att := range turn.Attachments {
			b.WriteString("\n")
			b.WriteString(cliui.DimStyle.Render(fmt.Sprintf("  [image %s]", att.MediaType)))
		}
	}
	return b.String()
}

func label(turn llm.Turn) string {
	stamp := ""
	if !turn.Timestamp.IsZero() {
		stamp = cliui.DimStyle.Render(" " + turn.Timestamp.Format("15:04:05"))
	}

	switch turn.Role {
	case llm.RoleUser:
		return userLabel.Render("You") + stamp
	case llm.RoleSystem:
		return systemLabel.Render("System") + stamp
	default:
		return assistantLabel.Render("Assistant") + stamp
	}
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render("notechat")
	if cfg := m.store.Get(); cfg.Endpoint.Model != "" {
		header += cliui.DimStyle.Render("  " + cfg.Endpoint.Model)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputBorder.Render(m.input.View()),
		m.statusLine(),
	)
}

func (m model) statusLine() string {
	switch {
	case strings.HasPrefix(m.status, "error:"):
		return cliui.ErrorStyle.Render(m.status)
	case m.status != "":
		return cliui.WarnStyle.Render(m.status)
	case m.streaming:
		return cliui.DimStyle.Render("streaming... esc quits")
	default:
		return cliui.DimStyle.Render("enter send · ctrl+e edit · ctrl+r regenerate · ctrl+n new chat · esc quit")
	}
}
