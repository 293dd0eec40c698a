// Package completion executes chat-completion requests against an
// OpenAI-compatible endpoint, streamed or whole-body, with a bounded
// fixed-delay retry.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/llm/openai"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/sse"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 4 * 1024

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs completion calls. It holds no per-call state and may be
// shared, though callers are expected to keep at most one call in flight
// per conversation.
type Client struct {
	httpClient Doer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithLogger sets the logger. Defaults to logger.Nop().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		// Attempts are bounded by RequestConfig.Timeout through the request
		// context instead of a client-wide timeout, since streams can be long.
		httpClient: &http.Client{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends turns to the endpoint described by cfg and returns the
// final assistant text.
//
// onDelta, when non-nil, receives the full accumulated text every time it
// grows. In whole-body mode it is called exactly once. When an attempt
// fails and is retried, the buffer restarts from empty, so the first call
// of the next attempt supersedes everything delivered before.
func (c *Client) Complete(ctx context.Context, cfg RequestConfig, turns []llm.Turn, onDelta func(string)) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	target, body, err := c.buildBody(cfg, turns)
	if err != nil {
		return "", err
	}

	if onDelta == nil {
		onDelta = func(string) {}
	}

	attempt := 0
	var final string
	op := func() error {
		attempt++
		c.logger.Debug("sending completion request",
			"target", target,
			"model", cfg.Model,
			"stream", cfg.Stream,
			"messages", len(turns),
			"attempt", attempt,
		)

		text, err := c.do(ctx, cfg, target, body, onDelta)
		if err != nil {
			return err
		}
		final = text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.retryDelay()), uint64(cfg.MaxRetryAttempts)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("completion attempt failed, retrying",
			"attempt", attempt,
			"max_retry_attempts", cfg.MaxRetryAttempts,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.logger.Error("completion failed", "attempts", attempt, "error", err)
		return "", err
	}
	return final, nil
}

// Stream is the pull-based form of Complete. Each value is the full
// accumulated text at a checkpoint. A failed call yields a single
// ("", err) pair last. Breaking out of the loop cancels the request.
func (c *Client) Stream(ctx context.Context, cfg RequestConfig, turns []llm.Turn) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		_, err := c.Complete(ctx, cfg, turns, func(text string) {
			if stopped {
				return
			}
			if !yield(text, nil) {
				stopped = true
				cancel()
			}
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}

// buildBody returns the request target and body. In relay mode the payload
// is wrapped in an envelope naming the real endpoint.
func (c *Client) buildBody(cfg RequestConfig, turns []llm.Turn) (string, []byte, error) {
	req := openai.NewRequest(openai.Params{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Stream:       cfg.Stream,
		SystemPrompt: cfg.SystemPrompt,
	}, turns)

	payload, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := ResolveEndpoint(cfg.BaseURL)
	if cfg.ProxyURL == "" {
		return endpoint, payload, nil
	}

	envelope, err := json.Marshal(openai.ProxyEnvelope{
		URL:     endpoint,
		APIKey:  cfg.APIKey,
		Payload: payload,
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshaling relay envelope: %w", err)
	}
	return cfg.ProxyURL, envelope, nil
}

// do performs one attempt. Errors it returns are retryable unless wrapped
// with backoff.Permanent.
func (c *Client) do(ctx context.Context, cfg RequestConfig, target string, body []byte, onDelta func(string)) (string, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if cfg.ProxyURL == "" && cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if cfg.Stream && !isJSON(resp.Header.Get("Content-Type")) {
		return c.readStream(resp.Body, onDelta)
	}
	return c.readWhole(resp.Body, onDelta)
}

// readStream accumulates delta text from an event stream until the done
// sentinel or EOF. Malformed lines are logged and skipped.
func (c *Client) readStream(body io.Reader, onDelta func(string)) (string, error) {
	var buf strings.Builder
	reader := sse.NewReader(body)

	for {
		ev, err := reader.Next()
		if err != nil {
			return "", fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil || ev.IsDone() {
			return buf.String(), nil
		}
		if ev.Data == "" {
			continue
		}

		delta, err := openai.ParseStreamChunk([]byte(ev.Data))
		if err != nil {
			c.logger.Warn("skipping malformed stream line",
				"error", err,
				"line", ev.Data,
			)
			continue
		}
		if delta == "" {
			continue
		}

		buf.WriteString(delta)
		onDelta(buf.String())
	}
}

// readWhole decodes a complete response body and reports its text once.
func (c *Client) readWhole(body io.Reader, onDelta func(string)) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	text, err := openai.ParseResponse(data)
	if err != nil {
		return "", err
	}

	onDelta(text)
	return text, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
