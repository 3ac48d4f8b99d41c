package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/copyrighter/audit"
)

// ReplacedArgs defines the input parameters for the copyright_replaced tool.
type ReplacedArgs struct {
	Query      string `json:"query,omitempty" jsonschema:"Search query over removed headers. Plain text for word match, quoted for exact phrase, /regex/ for a single-term regular expression. Empty lists everything"`
	Language   string `json:"language,omitempty" jsonschema:"Restrict to one language: java, xml or clojure"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// ReplacedHandler holds the dependencies for the replaced-header search tool.
type ReplacedHandler struct {
	Audit  *audit.Index
	Logger *slog.Logger
}

// Handle processes a copyright_replaced request.
func (h *ReplacedHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReplacedArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	entries, err := h.Audit.Search(audit.SearchOptions{
		Query:      args.Query,
		Language:   args.Language,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("copyright_replaced failed", "query", args.Query, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("copyright_replaced",
		"query", args.Query,
		"results", len(entries),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatReplaced(entries)}},
	}, nil, nil
}
