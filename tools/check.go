package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/copyrighter/header"
	"github.com/lexandro/copyrighter/language"
)

// CheckArgs defines the input parameters for the copyright_check tool.
type CheckArgs struct {
	FilePath string `json:"filePath" jsonschema:"File path relative to the project root (e.g. src/main/java/Foo.java)"`
	Language string `json:"language,omitempty" jsonschema:"Language override: java, xml or clojure (default: detected from the extension)"`
}

// CheckHandler holds the dependencies for the check tool.
type CheckHandler struct {
	RootDir string
	License string
	Logger  *slog.Logger
}

// Handle processes a copyright_check request. It never writes the file.
func (h *CheckHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args CheckArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		h.Logger.Warn("copyright_check called with empty filePath")
		return errorResult("Error: filePath parameter is required"), nil, nil
	}

	absPath, err := h.resolve(args.FilePath)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	lang := language.Detect(absPath)
	if args.Language != "" {
		if lang, err = language.Parse(args.Language); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
		}
	}
	style, err := language.Style(lang)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: %s: %v", args.FilePath, err)), nil, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		h.Logger.Info("copyright_check read failed", "filePath", args.FilePath, "error", err)
		return errorResult(fmt.Sprintf("Error reading %s: %v", args.FilePath, err)), nil, nil
	}

	result := header.Splice(content, style, header.Render(h.License, style))
	h.Logger.Info("copyright_check", "filePath", args.FilePath, "language", lang.String(), "current", !result.Changed)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatCheckResult(args.FilePath, lang.String(), result)}},
	}, nil, nil
}

// resolve maps a root-relative path to an absolute one inside the root.
func (h *CheckHandler) resolve(relPath string) (string, error) {
	relPath = filepath.FromSlash(strings.ReplaceAll(relPath, "\\", "/"))
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("filePath must be relative to the project root: %s", relPath)
	}
	absPath := filepath.Join(h.RootDir, relPath)
	rel, err := filepath.Rel(h.RootDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("filePath escapes the project root: %s", relPath)
	}
	return absPath, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
