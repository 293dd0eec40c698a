package relay

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

// Config is the relay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// Metrics mounts the Prometheus handler at /metrics.
	Metrics bool

	// Registry receives the relay's collectors. Defaults to a fresh
	// registry so several relays can coexist in one process.
	Registry *prometheus.Registry

	// MCP mounts the history tools at /mcp. Requires Driver.
	MCP bool

	// Driver backs the MCP history tools.
	Driver storage.Driver

	// Codec decodes history for the MCP tools.
	Codec *transcript.Codec

	// HTTPClient performs endpoint calls. Defaults to a client with a five
	// minute timeout.
	HTTPClient *http.Client
}
