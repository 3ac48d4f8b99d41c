package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func Test_ApplyHandler_RecordsHistory(t *testing.T) {
	history := &SweepHistory{}
	var gotDryRun bool
	handler := &ApplyHandler{
		DoSweep: func(dryRun bool) (SweepStats, error) {
			gotDryRun = dryRun
			return SweepStats{Projects: 2, Files: 5, Rewritten: 5, Replaced: 3, Elapsed: 12 * time.Millisecond}, nil
		},
		History: history,
		Logger:  discardLogger(),
	}

	result, _, err := handler.Handle(context.Background(), nil, ApplyArgs{})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if gotDryRun {
		t.Error("expected a real sweep, got dry run")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Rewrote 5 files in 2 projects") {
		t.Errorf("unexpected text: %q", text)
	}

	stats, _, runs, ok := history.Last()
	if !ok || runs != 1 || stats.Replaced != 3 {
		t.Errorf("history not recorded: ok=%v runs=%d stats=%+v", ok, runs, stats)
	}
}

func Test_ApplyHandler_DryRunListsFiles(t *testing.T) {
	handler := &ApplyHandler{
		DoSweep: func(dryRun bool) (SweepStats, error) {
			return SweepStats{Projects: 1, Files: 2, OutOfDate: []string{"src/main/java/A.java"}, DryRun: dryRun}, nil
		},
		History: &SweepHistory{},
		Logger:  discardLogger(),
	}

	result, _, _ := handler.Handle(context.Background(), nil, ApplyArgs{DryRun: true})
	text := resultText(t, result)
	if !strings.Contains(text, "1 files need a new header") || !strings.Contains(text, "src/main/java/A.java") {
		t.Errorf("unexpected text: %q", text)
	}
}

func Test_ApplyHandler_SweepError(t *testing.T) {
	history := &SweepHistory{}
	handler := &ApplyHandler{
		DoSweep: func(dryRun bool) (SweepStats, error) {
			return SweepStats{}, errors.New("permission denied")
		},
		History: history,
		Logger:  discardLogger(),
	}

	result, _, err := handler.Handle(context.Background(), nil, ApplyArgs{})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result")
	}
	if text := resultText(t, result); !strings.Contains(text, "permission denied") {
		t.Errorf("unexpected text: %q", text)
	}
	if _, _, _, ok := history.Last(); ok {
		t.Error("failed sweep should not be recorded")
	}
}
