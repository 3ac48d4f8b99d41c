package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ApplyArgs defines the input parameters for the copyright_apply tool.
type ApplyArgs struct {
	DryRun bool `json:"dryRun,omitempty" jsonschema:"If true report files with out-of-date headers without rewriting anything"`
}

// SweepStats summarises one sweep for the tools.
type SweepStats struct {
	Projects  int
	Files     int
	Rewritten int
	Replaced  int
	OutOfDate []string
	Elapsed   time.Duration
	DryRun    bool
}

// SweepFunc runs a sweep over the project tree.
// It is provided by main.go to avoid circular dependencies.
type SweepFunc func(dryRun bool) (SweepStats, error)

// SweepHistory remembers the most recent sweep for the status tool.
type SweepHistory struct {
	mu    sync.Mutex
	last  SweepStats
	at    time.Time
	runs  int
	valid bool
}

// Record stores stats as the latest sweep.
func (h *SweepHistory) Record(stats SweepStats, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = stats
	h.at = at
	h.runs++
	h.valid = true
}

// Last returns the latest sweep, its completion time and the number of
// sweeps run. ok is false before the first sweep.
func (h *SweepHistory) Last() (stats SweepStats, at time.Time, runs int, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.at, h.runs, h.valid
}

// ApplyHandler holds the dependencies for the apply tool.
type ApplyHandler struct {
	DoSweep SweepFunc
	History *SweepHistory
	Logger  *slog.Logger
}

// Handle processes a copyright_apply request.
func (h *ApplyHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ApplyArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("copyright_apply started", "dryRun", args.DryRun)

	stats, err := h.DoSweep(args.DryRun)
	if err != nil {
		h.Logger.Error("copyright_apply failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Sweep error: %v", err)}},
			IsError: true,
		}, nil, nil
	}
	if h.History != nil {
		h.History.Record(stats, time.Now())
	}

	h.Logger.Info("copyright_apply complete",
		"projects", stats.Projects,
		"files", stats.Files,
		"rewritten", stats.Rewritten,
		"outOfDate", len(stats.OutOfDate),
		"elapsed", stats.Elapsed,
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSweepStats(stats)}},
	}, nil, nil
}
