package chatcmder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/logger"
)

// chatSession is the part of *conversation.Session the view drives.
type chatSession interface {
	Turns() []llm.Turn
	Send(ctx context.Context, text string, attachments []llm.Attachment, onDelta func(string)) (llm.Turn, error)
	Regenerate(ctx context.Context, onDelta func(string)) (llm.Turn, error)
	Edit(ctx context.Context, index int, text string, onDelta func(string)) (llm.Turn, error)
	Archive(ctx context.Context) (string, error)
}

// Layout rows outside the viewport: header, input (3) with its border (2),
// and the status line.
const (
	headerHeight = 1
	inputHeight  = 3
	chromeHeight = headerHeight + inputHeight + 2 + 1
)

// deltaMsg signals that the streaming reply grew.
type deltaMsg struct{}

// doneMsg carries the settled result of a request.
type doneMsg struct {
	err error
}

// configMsg signals that the configuration changed.
type configMsg struct{}

// archivedMsg carries the result of ctrl+n.
type archivedMsg struct {
	name string
	err  error
}

type model struct {
	ctx     context.Context
	session chatSession
	store   config.Store

	viewport viewport.Model
	input    textarea.Model
	render   *renderer

	width  int
	height int
	ready  bool

	streaming bool
	cancel    context.CancelFunc

	// editing is the index of the user turn being edited, or -1.
	editing int
	status  string

	deltas chan struct{}
	done   chan doneMsg

	configs     chan struct{}
	unsubscribe func()
}

func newModel(ctx context.Context, session chatSession, store config.Store, style string) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	configs := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(config.Config) {
		select {
		case configs <- struct{}{}:
		default:
		}
	})

	return model{
		ctx:         ctx,
		session:     session,
		store:       store,
		viewport:    viewport.New(80, 20),
		input:       ta,
		render:      newRenderer(style),
		editing:     -1,
		deltas:      make(chan struct{}, 1),
		done:        make(chan doneMsg, 1),
		configs:     configs,
		unsubscribe: unsubscribe,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForConfig())
}

// waitForConfig delivers the next configuration change.
func (m model) waitForConfig() tea.Cmd {
	configs, ctx := m.configs, m.ctx
	return func() tea.Msg {
		select {
		case <-configs:
			return configMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case deltaMsg:
		m.refresh()
		return m, m.waitForActivity()

	case doneMsg:
		m.streaming = false
		m.cancel = nil
		m.status = ""
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.status = statusError(msg.err)
		}
		m.refresh()
		return m, nil

	case configMsg:
		if !m.streaming {
			m.status = "config reloaded"
			if name := m.store.Get().Endpoint.Model; name != "" {
				m.status += ", model " + name
			}
		}
		return m, m.waitForConfig()

	case archivedMsg:
		switch {
		case msg.err != nil:
			m.status = statusError(msg.err)
		case msg.name == "":
			m.status = "nothing to archive"
		default:
			m.status = "archived as " + strings.TrimSuffix(msg.name, ".md")
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		if m.editing >= 0 && msg.String() == "esc" {
			m.editing = -1
			m.input.Reset()
			m.status = ""
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "enter":
		return m.submit()

	case "ctrl+r":
		if m.streaming {
			return m, nil
		}
		return m.start(func(ctx context.Context, onDelta func(string)) error {
			_, err := m.session.Regenerate(ctx, onDelta)
			return err
		})

	case "ctrl+e":
		if m.streaming {
			return m, nil
		}
		return m.beginEdit(), nil

	case "ctrl+n":
		if m.streaming {
			return m, nil
		}
		m.editing = -1
		session, ctx := m.session, m.ctx
		return m, func() tea.Msg {
			name, err := session.Archive(ctx)
			return archivedMsg{name: name, err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input, or the edit in progress.
func (m model) submit() (tea.Model, tea.Cmd) {
	if m.streaming {
		return m, nil
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.input.Reset()

	if index := m.editing; index >= 0 {
		m.editing = -1
		return m.start(func(ctx context.Context, onDelta func(string)) error {
			_, err := m.session.Edit(ctx, index, text, onDelta)
			return err
		})
	}

	return m.start(func(ctx context.Context, onDelta func(string)) error {
		_, err := m.session.Send(ctx, text, nil, onDelta)
		return err
	})
}

// beginEdit loads the newest user turn into the input.
func (m model) beginEdit() model {
	turns := m.session.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == llm.RoleUser {
			m.editing = i
			m.input.SetValue(turns[i].Text)
			m.status = "editing last message (esc to cancel)"
			return m
		}
	}
	m.status = "no message to edit"
	return m
}

// start runs a request in the background. The session reports progress
// through the delta channel; only the latest signal matters since the
// view re-reads the whole conversation.
func (m model) start(run func(ctx context.Context, onDelta func(string)) error) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.streaming = true
	m.cancel = cancel
	m.status = ""

	deltas, done := m.deltas, m.done
	onDelta := func(string) {
		select {
		case deltas <- struct{}{}:
		default:
		}
	}

	go func() {
		err := run(ctx, onDelta)
		cancel()
		done <- doneMsg{err: err}
	}()

	m.refresh()
	return m, m.waitForActivity()
}

// waitForActivity delivers the next delta or the final result.
func (m model) waitForActivity() tea.Cmd {
	deltas, done := m.deltas, m.done
	return func() tea.Msg {
		select {
		case <-deltas:
			return deltaMsg{}
		case msg := <-done:
			return msg
		}
	}
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 1)
	m.input.SetWidth(max(width-2, 10))
	m.render.setWidth(width)

	m.refresh()
}

// refresh re-renders the conversation. The view follows new content only
// when it was already scrolled to the bottom.
func (m *model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.render.conversation(m.session.Turns(), m.streaming))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func statusError(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "error: " + msg
}

func newFileLogger(f *os.File, debug bool) *slog.Logger {
	return logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(debug),
	)
}
