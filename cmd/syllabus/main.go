package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/syllabus/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("syllabus %s\n", Version)
		return
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.LoadWithEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if cmd == "config" {
		return cmdConfig(cfg, args, os.Stdout)
	}

	a, err := newApp(cfg, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	switch cmd {
	case "outline":
		return a.cmdOutline()
	case "lesson":
		return a.cmdLesson(args)
	case "render":
		return a.cmdRender(args)
	case "complete":
		return a.cmdComplete(args)
	case "current":
		return a.cmdCurrent(args)
	case "next":
		return a.cmdNext()
	case "progress":
		return a.cmdProgress()
	case "reset":
		return a.cmdReset(args)
	case "serve":
		return a.cmdServe()
	case "mcp":
		return a.cmdMCP()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Println(`Syllabus - a local Go course in your terminal

Usage:
  syllabus <command> [arguments]

Course Commands:
  outline               List modules and lessons with completion marks
  lesson <id> [--html]  Print a lesson (markdown, or a full HTML document)
  next                  Move to the next lesson and show it
  render <file> [-o f]  Render any markdown file to an HTML document

Progress Commands:
  complete [id]         Mark a lesson complete (default: current lesson)
  current [id]          Show or set the current lesson
  progress              Show overall and per-module progress
  reset --yes           Clear all progress

Integration Commands:
  serve                 Start the local lesson viewer (browser)
  mcp                   Start MCP server on stdio

Other:
  config [init]         Show effective configuration, or write a default file
  help                  Show this help message
  version               Show version information

Examples:
  syllabus outline
  syllabus lesson 02-03
  syllabus complete 02-03
  syllabus serve        # then open http://127.0.0.1:7433/`)
}

// renderProgressBar creates a visual progress bar for a 0-100 percentage
func renderProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}
