// Package mcp provides an MCP (Model Context Protocol) server exposing the
// archived chat history to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
	"github.com/papercomputeco/notechat/pkg/utils"
)

type Config struct {
	// Driver holds the history snapshots
	Driver storage.Driver

	// Codec decodes snapshots for read_history. Defaults to transcript.NewCodec().
	Codec *transcript.Codec

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the history tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "notechat",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Driver == nil {
			return nil, errors.New("storage driver is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}
		if s.config.Codec == nil {
			s.config.Codec = transcript.NewCodec()
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        searchToolName,
			Description: searchDescription,
		}, s.handleSearch)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        listToolName,
			Description: listDescription,
		}, s.handleList)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        readToolName,
			Description: readDescription,
		}, s.handleRead)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
