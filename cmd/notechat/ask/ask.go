// Package askcmder provides the ask command for one-shot questions.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/notechat/cmd/notechat/workspace"
	"github.com/papercomputeco/notechat/pkg/cliui"
	"github.com/papercomputeco/notechat/pkg/completion"
	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/conversation"
	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

type askCommander struct {
	baseURL   string
	model     string
	proxyURL  string
	maxTokens uint
	retries   uint
	images    []string
	render    bool
	save      bool

	configDir string
	debug     bool
	cfg       *config.Config

	in  io.Reader
	out io.Writer
}

var askFlags = []string{
	config.FlagBaseURL,
	config.FlagModel,
	config.FlagProxyURL,
	config.FlagMaxTokens,
	config.FlagRetries,
}

const askLongDesc string = `Ask a single question and print the answer.

The prompt is taken from the arguments, or from stdin when no arguments are
given. The answer streams to stdout as it arrives; with --render it is
printed once at the end as rendered Markdown.

The live chat conversation is left untouched. Use --save to store the
question and answer as a history snapshot.

Examples:
  notechat ask "What is a monad?"
  notechat ask --model gpt-4o --image diagram.png "Explain this diagram"
  git diff | notechat ask --render`

const askShortDesc string = "Ask a one-shot question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: askShortDesc,
		Long:  askLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cfg, err := workspace.ResolveConfig(cmd, cmder.configDir, askFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return cmder.run(ctx, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagProxyURL, &cmder.proxyURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddUintFlag(cmd, config.Flags, config.FlagRetries, &cmder.retries)
	cmd.Flags().StringArrayVarP(&cmder.images, "image", "i", nil, "Attach an image file (repeatable)")
	cmd.Flags().BoolVarP(&cmder.render, "render", "r", false, "Print the answer as rendered Markdown when complete")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Store the exchange as a history snapshot")

	return cmd
}

func (c *askCommander) run(ctx context.Context, args []string) error {
	prompt, err := c.readPrompt(args)
	if err != nil {
		return err
	}

	attachments := make([]llm.Attachment, 0, len(c.images))
	for _, path := range c.images {
		a, err := llm.ReadAttachment(path)
		if err != nil {
			return err
		}
		attachments = append(attachments, a)
	}

	if strings.TrimSpace(prompt) == "" && len(attachments) == 0 {
		return conversation.ErrEmptyMessage
	}

	ws, err := workspace.Open(workspace.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	key, err := ws.Key(*c.cfg)
	if err != nil {
		return fmt.Errorf("resolving api key: %w", err)
	}

	user := llm.NewTurn(llm.RoleUser, prompt, time.Now())
	user.Attachments = attachments

	client := completion.New(completion.WithLogger(ws.Logger))
	printer := &deltaPrinter{w: c.out}

	var answer string
	for text, err := range client.Stream(ctx, conversation.RequestConfigFrom(*c.cfg, key), []llm.Turn{user}) {
		if err != nil {
			return err
		}
		answer = text
		if !c.render {
			printer.print(text)
		}
	}

	if c.render {
		rendered, err := cliui.RenderMarkdown(answer)
		if err != nil {
			ws.Logger.Debug("markdown render failed", "error", err)
		}
		fmt.Fprint(c.out, rendered)
	} else {
		fmt.Fprintln(c.out)
	}

	if c.save {
		return c.saveExchange(ctx, ws, user, answer)
	}
	return nil
}

func (c *askCommander) saveExchange(ctx context.Context, ws *workspace.Workspace, user llm.Turn, answer string) error {
	now := time.Now()
	turns := []llm.Turn{user, llm.NewTurn(llm.RoleAssistant, answer, now)}

	name := transcript.SnapshotName(now)
	if err := ws.Driver.PutSnapshot(ctx, name, ws.Codec().Encode(turns)); err != nil {
		return fmt.Errorf("saving history snapshot: %w", err)
	}

	ws.Logger.Info("saved history snapshot", "name", name)
	return nil
}

// readPrompt joins the arguments, or reads all of stdin when there are
// none and stdin is not a terminal.
func (c *askCommander) readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("prompt required: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(c.in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// deltaPrinter writes only the new suffix of each accumulated buffer. When
// a retried attempt restarts the buffer the text is printed again from
// the start on a new line.
type deltaPrinter struct {
	w       io.Writer
	printed string
}

func (p *deltaPrinter) print(buf string) {
	if strings.HasPrefix(buf, p.printed) {
		_, _ = io.WriteString(p.w, buf[len(p.printed):])
	} else {
		_, _ = io.WriteString(p.w, "\n"+buf)
	}
	p.printed = buf
}
