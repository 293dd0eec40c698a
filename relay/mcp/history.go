package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

var (
	searchToolName    = "search_history"
	searchDescription = "Search archived chat transcripts for a case-insensitive substring. Returns matching snapshots, newest first."

	listToolName    = "list_history"
	listDescription = "List archived chat transcripts, newest first, with a one-line preview of each."

	readToolName    = "read_history"
	readDescription = "Read one archived chat transcript by name and return its turns."
)

const defaultLimit = 10

// SearchInput represents the input arguments for the search_history tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to look for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 10)"`
}

// ListInput represents the input arguments for the list_history tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of results (default: 10)"`
}

// Snapshot summarizes one archived transcript.
type Snapshot struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
	Preview   string    `json:"preview"`
}

// SnapshotsOutput is returned by search_history and list_history.
type SnapshotsOutput struct {
	Query   string     `json:"query,omitempty"`
	Results []Snapshot `json:"results"`
	Count   int        `json:"count"`
}

// ReadInput represents the input arguments for the read_history tool.
type ReadInput struct {
	Name string `json:"name" jsonschema:"snapshot name as returned by search_history or list_history"`
}

// Turn represents a single turn in a transcript.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadOutput represents the output of the read_history tool.
type ReadOutput struct {
	Name  string `json:"name"`
	Turns []Turn `json:"turns"`
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SnapshotsOutput, error) {
	s.config.Logger.Debug("MCP search_history request", "query", input.Query, "limit", input.Limit)

	if input.Query == "" {
		return errorResult("query is required"), SnapshotsOutput{}, nil
	}

	infos, err := s.config.Driver.Search(ctx, input.Query)
	if err != nil {
		s.config.Logger.Error("failed to search history", "error", err)
		return errorResult(fmt.Sprintf("Failed to search history: %v", err)), SnapshotsOutput{}, nil
	}

	out := snapshotsOutput(infos, input.Limit)
	out.Query = input.Query
	return s.jsonResult(out), out, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, SnapshotsOutput, error) {
	infos, err := s.config.Driver.ListSnapshots(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list history", "error", err)
		return errorResult(fmt.Sprintf("Failed to list history: %v", err)), SnapshotsOutput{}, nil
	}
	out := snapshotsOutput(infos, input.Limit)
	return s.jsonResult(out), out, nil
}

func (s *Server) handleRead(ctx context.Context, _ *mcp.CallToolRequest, input ReadInput) (*mcp.CallToolResult, ReadOutput, error) {
	s.config.Logger.Debug("MCP read_history request", "name", input.Name)

	content, err := s.config.Driver.GetSnapshot(ctx, input.Name)
	if err != nil {
		if storage.IsNotFound(err) {
			return errorResult(fmt.Sprintf("No snapshot named %q", input.Name)), ReadOutput{}, nil
		}
		s.config.Logger.Error("failed to read history", "name", input.Name, "error", err)
		return errorResult(fmt.Sprintf("Failed to read history: %v", err)), ReadOutput{}, nil
	}

	var day time.Time
	if created, err := transcript.ParseSnapshotName(input.Name); err == nil {
		day = created
	}

	decoded := s.config.Codec.DecodeOn(content, day)
	out := ReadOutput{
		Name:  input.Name,
		Turns: make([]Turn, 0, len(decoded)),
	}
	for _, t := range decoded {
		out.Turns = append(out.Turns, Turn{
			Role:      t.Role.String(),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	return s.jsonResult(out), out, nil
}

func snapshotsOutput(infos []storage.SnapshotInfo, limit int) SnapshotsOutput {
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(infos) > limit {
		infos = infos[:limit]
	}

	out := SnapshotsOutput{Results: make([]Snapshot, 0, len(infos))}
	for _, info := range infos {
		out.Results = append(out.Results, Snapshot{
			Name:      info.Name,
			CreatedAt: info.CreatedAt,
			Size:      info.Size,
			Preview:   info.Preview,
		})
	}
	out.Count = len(out.Results)
	return out
}

// jsonResult serializes structured output into a text block as well, for
// clients that ignore structured content.
func (s *Server) jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		s.config.Logger.Error("failed to marshal tool output", "error", err)
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
