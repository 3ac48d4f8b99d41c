package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/term"

	"github.com/lexandro/copyrighter/audit"
	"github.com/lexandro/copyrighter/ignore"
	"github.com/lexandro/copyrighter/project"
	"github.com/lexandro/copyrighter/register"
	"github.com/lexandro/copyrighter/server"
	"github.com/lexandro/copyrighter/tools"
)

// excludePatterns is a repeatable CLI flag for extra prune patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// options holds the parsed command line.
type options struct {
	rootDir      string
	check        bool
	watch        bool
	useGitignore bool
	excludes     excludePatterns
	logLevel     string
	logFile      string
	files        []string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "register":
			return register.Run("copyrighter", args[1:], os.Stdout, os.Stderr)
		case register.ServeCommand:
			opts, err := parseFlags(register.ServeCommand, true, args[1:])
			if err != nil {
				return err
			}
			return runServer(opts)
		}
	}

	opts, err := parseFlags("copyrighter", false, args)
	if err != nil {
		return err
	}
	return runCLI(opts)
}

// parseFlags parses the flags of the default CLI or, with serve set, of the
// mcp subcommand, which takes neither -check nor file arguments.
func parseFlags(name string, serve bool, args []string) (options, error) {
	var opts options
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&opts.rootDir, "root", "", "Directory to sweep (default: current working directory)")
	if serve {
		flags.BoolVar(&opts.watch, "watch", false, "Keep headers current as files change while serving")
	} else {
		flags.BoolVar(&opts.check, "check", false, "Report files with out-of-date headers and exit 1 if any, without writing")
		flags.BoolVar(&opts.watch, "watch", false, "Sweep once, then keep headers current as files change")
	}
	flags.BoolVar(&opts.useGitignore, "gitignore", false, "Also prune directories ignored by the root .gitignore")
	flags.Var(&opts.excludes, "exclude", "Extra directory prune pattern (repeatable)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file path (default: stderr)")
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	opts.files = flags.Args()
	if serve && len(opts.files) > 0 {
		return opts, fmt.Errorf("%s takes no file arguments: %s", name, strings.Join(opts.files, " "))
	}

	if opts.rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("getting working directory: %w", err)
		}
		opts.rootDir = wd
	}
	rootDir, err := filepath.Abs(opts.rootDir)
	if err != nil {
		return opts, fmt.Errorf("resolving root %s: %w", opts.rootDir, err)
	}
	opts.rootDir = rootDir
	return opts, nil
}

// runCLI runs a one-shot sweep, a check, explicit file rewrites or watch mode.
func runCLI(opts options) error {
	logger, closeLog := setupLogger(opts.logLevel, opts.logFile)
	defer closeLog()

	if len(opts.files) > 0 {
		count, err := rewriteFiles(opts.files, licenseText, logger)
		logger.Info("rewrote files", "count", count)
		return err
	}

	cfg := newSweepConfig(opts, logger)
	cfg.Progress = os.Stderr
	cfg.DryRun = opts.check

	result, err := performSweep(cfg)
	logger.Info("sweep finished",
		"projects", result.Projects,
		"files", result.Files,
		"rewritten", result.Rewritten,
		"duration", result.Duration,
	)
	if err != nil {
		return err
	}

	if opts.check {
		for _, path := range result.OutOfDate {
			fmt.Fprintln(os.Stdout, path)
		}
		if len(result.OutOfDate) > 0 {
			return fmt.Errorf("%w: %d files", errOutOfDate, len(result.OutOfDate))
		}
		return nil
	}

	if opts.watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cfg)
	}
	return nil
}

// runServer serves the MCP tools over stdio until the client disconnects.
// Stdout belongs to the MCP transport; nothing else may write to it.
func runServer(opts options) error {
	logFile := opts.logFile
	if logFile == "" {
		logFile = filepath.Join(opts.rootDir, "copyrighter.log")
	}
	logger, closeLog := setupLogger(opts.logLevel, logFile)
	defer closeLog()

	logger.Info("starting copyrighter mcp", "root", opts.rootDir, "gitignore", opts.useGitignore)
	startTime := time.Now()

	auditIndex, err := audit.NewIndex()
	if err != nil {
		return fmt.Errorf("creating audit index: %w", err)
	}
	defer auditIndex.Close()

	cfg := newSweepConfig(opts, logger)
	cfg.Progress = io.Discard
	cfg.Audit = auditIndex
	cfg.Serial = &sync.Mutex{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.watch {
		go func() {
			if err := runWatch(ctx, cfg); err != nil {
				logger.Error("watch stopped", "error", err)
			}
		}()
	}

	history := &tools.SweepHistory{}
	applyHandler := &tools.ApplyHandler{
		History: history,
		Logger:  logger,
		DoSweep: newSweepFunc(cfg),
	}
	checkHandler := &tools.CheckHandler{RootDir: opts.rootDir, License: licenseText, Logger: logger}
	replacedHandler := &tools.ReplacedHandler{Audit: auditIndex, Logger: logger}
	statusHandler := &tools.StatusHandler{
		RootDir:   opts.rootDir,
		StartTime: startTime,
		History:   history,
		Audit:     auditIndex,
		Logger:    logger,
	}

	mcpServer := server.Setup(applyHandler, checkHandler, replacedHandler, statusHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}

// newSweepFunc adapts performSweep for the apply tool. Set cfg.Serial so
// overlapping tool calls sweep one after the other.
func newSweepFunc(cfg sweepConfig) tools.SweepFunc {
	return func(dryRun bool) (tools.SweepStats, error) {
		// Pick up .gitignore edits made since the last sweep.
		cfg.Matcher.Reload()
		sweepCfg := cfg
		sweepCfg.DryRun = dryRun
		result, err := performSweep(sweepCfg)
		stats := tools.SweepStats{
			Projects:  result.Projects,
			Files:     result.Files,
			Rewritten: result.Rewritten,
			Replaced:  result.Replaced,
			OutOfDate: result.OutOfDate,
			Elapsed:   result.Duration,
			DryRun:    dryRun,
		}
		return stats, err
	}
}

func newSweepConfig(opts options, logger *slog.Logger) sweepConfig {
	return sweepConfig{
		RootDir:    opts.rootDir,
		License:    licenseText,
		Categories: project.DefaultCategories,
		Matcher: ignore.NewMatcher(ignore.MatcherOptions{
			RootDir:        opts.rootDir,
			CustomPatterns: opts.excludes,
			UseGitignore:   opts.useGitignore,
		}),
		Logger: logger,
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
// Stderr gets tint's console format, coloured only on a terminal.
func setupLogger(level string, logFile string) (*slog.Logger, func()) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel})
			return slog.New(handler), func() { f.Close() }
		}
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	})
	return slog.New(handler), func() {}
}
