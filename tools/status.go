package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/copyrighter/audit"
)

// StatusArgs defines the input parameters for the copyright_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	RootDir   string
	StartTime time.Time
	History   *SweepHistory
	Audit     *audit.Index
	Logger    *slog.Logger
}

// Handle processes a copyright_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder
	uptime := time.Since(h.StartTime)

	builder.WriteString("=== copyrighter Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	if h.Audit != nil {
		builder.WriteString(fmt.Sprintf("Replaced headers recorded: %d\n", h.Audit.Count()))
	}

	stats, at, runs, ok := h.History.Last()
	if !ok {
		builder.WriteString("\nNo sweep has run yet.\n")
	} else {
		builder.WriteString(fmt.Sprintf("Sweeps run: %d\n", runs))
		builder.WriteString(fmt.Sprintf("\nLast sweep (%s ago):\n", formatDuration(time.Since(at))))
		builder.WriteString(FormatSweepStats(stats))
	}

	h.Logger.Info("copyright_status", "uptime", uptime, "sweeps", runs)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
