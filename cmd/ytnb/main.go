package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/mcp"
	"github.com/hpungsan/ytnb/internal/notebooklm"
	"github.com/hpungsan/ytnb/internal/ops"
	"github.com/hpungsan/ytnb/internal/tool"
	"github.com/hpungsan/ytnb/internal/video"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// exitUsage is the exit code for a missing required argument.
const exitUsage = 2

const banner = `
  _   _ _____ _  _ ___
 | | | |_   _| \| | _ )
 | |_| | | | | .  | _ \
  \__, | |_| |_|\_|___/
  |___/

  YouTube videos into NotebookLM notebooks

  Usage: ytnb <youtube-url> [options]
         ytnb <command> [options]
         ytnb --help

  MCP server mode requires piped input.`

// printBanner writes the usage banner shown when run interactively without
// args and returns the exit code: the URL argument is missing.
func printBanner(w io.Writer) int {
	fmt.Fprintln(w, banner)
	return exitUsage
}

// setupLogging installs the process-wide slog handler on stderr.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newEnv checks the external tools and wires the real collaborators.
// notebooklm is required; without yt-dlp imports fall back to placeholder metadata.
func newEnv(cfg *config.Config) (ops.Env, error) {
	nbPath, err := tool.Check(cfg.NotebookLMPath)
	if err != nil {
		return ops.Env{}, err
	}

	ytPath, err := tool.Check(cfg.YTDLPPath)
	if err != nil {
		slog.Warn("yt-dlp not available, video metadata will use placeholders", slog.String("path", cfg.YTDLPPath))
		ytPath = cfg.YTDLPPath
	}

	return ops.Env{
		Client:  notebooklm.NewCLI(nbPath, cfg.CallTimeout(), cfg.WaitTimeout()),
		Fetcher: &video.YTDLP{Path: ytPath, Timeout: cfg.CallTimeout(), Runner: tool.ExecRunner{}},
		Config:  cfg,
	}, nil
}

func main() {
	_ = godotenv.Load()

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		os.Exit(printBanner(os.Stderr))
	}

	// Handle --help/--version before touching config or tools
	if isHelpOrVersion() {
		app := newCLIApp(config.DefaultConfig(), newEnv)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine working directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithRepo(filepath.Join(homeDir, config.DirName), cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("unknown tools in disabled_tools", slog.Any("tools", unknown))
	}

	// No args + piped stdin → MCP server
	if len(os.Args) < 2 {
		setupLogging(os.Getenv("YTNB_DEBUG") != "")
		env, err := newEnv(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := mcp.Run(env, Version); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app := newCLIApp(cfg, newEnv)
	if err := app.Run(hoistFlags(app, os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
