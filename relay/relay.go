// Package relay provides the HTTP relay that chat clients in proxy mode
// talk to. Each request carries an envelope naming the real endpoint, the
// credential and the payload; the relay performs the endpoint call and
// streams the answer back untouched.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/notechat/pkg/llm/openai"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/sse"
	"github.com/papercomputeco/notechat/relay/header"
	"github.com/papercomputeco/notechat/relay/mcp"
)

const (
	modeStream = "stream"
	modeWhole  = "whole"
)

// errorResponse is the JSON body of relay-generated errors.
type errorResponse struct {
	Error string `json:"error"`
}

// Relay forwards envelope requests to OpenAI-compatible endpoints.
type Relay struct {
	config        Config
	logger        *slog.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
	metrics       *metrics
}

// New creates a new Relay.
func New(config Config, log *slog.Logger) (*Relay, error) {
	if log == nil {
		log = logger.Nop()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			// Completions can be slow, especially long streams.
			Timeout: 5 * time.Minute,
		}
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	r := &Relay{
		config:        config,
		logger:        log,
		httpClient:    config.HTTPClient,
		server:        app,
		headerHandler: header.NewHandler(),
		metrics:       newMetrics(config.Registry),
	}

	app.Get("/healthz", r.handleHealth)
	app.Post("/relay", r.handleRelay)

	if config.Metrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{})))
	}

	if config.MCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Driver: config.Driver,
			Codec:  config.Codec,
			Logger: log,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return r, nil
}

// Run starts the relay server on the configured listening address
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		"listen", r.config.ListenAddr,
		"metrics", r.config.Metrics,
		"mcp", r.config.MCP,
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay server using the provided listener.
func (r *Relay) RunWithListener(listener net.Listener) error {
	r.logger.Info("starting relay server", "listen", listener.Addr().String())

	return r.server.Listener(listener)
}

// Close gracefully shuts down the relay.
func (r *Relay) Close() error {
	return r.server.Shutdown()
}

func (r *Relay) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleRelay decodes the envelope and forwards its payload.
func (r *Relay) handleRelay(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := uuid.NewString()
	c.Set(header.RequestIDHeader, requestID)
	log := r.logger.With("request_id", requestID)

	var env openai.ProxyEnvelope
	if err := json.Unmarshal(c.Body(), &env); err != nil {
		log.Warn("rejecting malformed envelope", "error", err)
		return r.fail(c, modeWhole, fiber.StatusBadRequest, "malformed envelope")
	}
	if err := validateTarget(env.URL); err != nil {
		log.Warn("rejecting envelope target", "url", env.URL, "error", err)
		return r.fail(c, modeWhole, fiber.StatusBadRequest, err.Error())
	}
	if len(env.Payload) == 0 {
		return r.fail(c, modeWhole, fiber.StatusBadRequest, "envelope payload is required")
	}

	mode := modeWhole
	if isStreaming(env.Payload) {
		mode = modeStream
	}

	log.Debug("forwarding request to endpoint",
		"url", env.URL,
		"mode", mode,
		"bytes", len(env.Payload),
	)

	// Streams outlive the handler: fasthttp recycles its RequestCtx after
	// the handler returns while the pipe goroutine still reads upstream.
	ctx := context.Context(c.Context())
	if mode == modeStream {
		ctx = context.Background()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, env.URL, bytes.NewReader(env.Payload))
	if err != nil {
		log.Error("failed to create endpoint request", "error", err)
		return r.fail(c, mode, fiber.StatusInternalServerError, "internal error")
	}

	r.headerHandler.SetUpstreamRequestHeaders(c, httpReq)
	httpReq.Header.Set("Content-Type", "application/json")
	if env.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+env.APIKey)
	}

	httpResp, err := r.httpClient.Do(httpReq)
	r.metrics.upstream.WithLabelValues(mode).Observe(time.Since(startTime).Seconds())
	if err != nil {
		log.Error("endpoint request failed", "error", err)
		return r.fail(c, mode, fiber.StatusBadGateway, "endpoint request failed")
	}

	r.headerHandler.SetClientResponseHeaders(c, httpResp)
	r.metrics.requests.WithLabelValues(mode, strconv.Itoa(httpResp.StatusCode)).Inc()

	if mode == modeStream && httpResp.StatusCode == http.StatusOK &&
		strings.HasPrefix(httpResp.Header.Get("Content-Type"), "text/event-stream") {
		return r.stream(c, httpResp, log, startTime)
	}

	defer httpResp.Body.Close()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("failed to read endpoint response", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: "failed to read endpoint response"})
	}

	if httpResp.StatusCode >= 400 {
		log.Warn("endpoint returned error", "status", httpResp.StatusCode, "body", string(respBody))
	} else {
		log.Debug("relayed response", "status", httpResp.StatusCode, "duration", time.Since(startTime))
	}

	return c.Status(httpResp.StatusCode).Send(respBody)
}

// stream copies an event stream to the client through a pipe so that
// every line reaches the socket as soon as it arrives.
func (r *Relay) stream(c *fiber.Ctx, httpResp *http.Response, log *slog.Logger, startTime time.Time) error {
	pr, pw := io.Pipe()

	go func() {
		defer httpResp.Body.Close()
		defer pw.Close()

		reader := sse.NewReader(httpResp.Body, sse.WithTee(pw))
		events := 0
		for {
			ev, err := reader.Next()
			if err != nil {
				log.Error("error relaying event stream", "error", err)
				pw.CloseWithError(err)
				return
			}
			if ev == nil {
				break
			}
			if ev.IsDone() {
				continue
			}
			events++
			r.metrics.streamEvents.Inc()
		}

		log.Debug("stream complete", "events", events, "duration", time.Since(startTime))
	}()

	c.Status(httpResp.StatusCode)
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (r *Relay) fail(c *fiber.Ctx, mode string, status int, msg string) error {
	r.metrics.requests.WithLabelValues(mode, strconv.Itoa(status)).Inc()
	return c.Status(status).JSON(errorResponse{Error: msg})
}

// validateTarget accepts absolute http(s) URLs only.
func validateTarget(raw string) error {
	if raw == "" {
		return errors.New("envelope url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("envelope url is invalid")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("envelope url must be an absolute http(s) URL")
	}
	return nil
}

// isStreaming reports whether payload asks for a streamed answer.
func isStreaming(payload []byte) bool {
	var check struct {
		Stream bool `json:"stream"`
	}
	return json.Unmarshal(payload, &check) == nil && check.Stream
}
