// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// xiyou-diagrams is a terminal viewer for an illustrated chapter
// companion to 西游记 (Journey to the West). Each chapter carries one
// or more mermaid diagram sources that are rendered to ASCII through
// an external renderer command, plus an optional markdown table of
// notable passages.
//
// By default the viewer uses the chapter bundle embedded in the
// binary. Use --file to load a YAML bundle from disk instead (plain
// or zstd-compressed).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/wnma3mz/xiyou-diagrams/lib/bookui"
	"github.com/wnma3mz/xiyou-diagrams/lib/chapter"
	"github.com/wnma3mz/xiyou-diagrams/lib/config"
	"github.com/wnma3mz/xiyou-diagrams/lib/content"
	"github.com/wnma3mz/xiyou-diagrams/lib/diagram"
	"github.com/wnma3mz/xiyou-diagrams/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var filePath string
	var configPath string
	var rendererCommand string
	var logOutput string

	flagSet := pflag.NewFlagSet("xiyou-diagrams", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "path to a chapter bundle (YAML, optionally zstd-compressed; default: embedded bundle)")
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: user config directory)")
	flagSet.StringVar(&rendererCommand, "renderer", "", "diagram renderer command (overrides config)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("xiyou-diagrams %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if configPath == "" {
		configPath = config.Path()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("cannot load config from %s: %w", configPath, err)
	}
	if rendererCommand != "" {
		cfg.RendererCommand = rendererCommand
		cfg.RendererArgs = nil
	}

	if filePath == "" {
		filePath = cfg.BundlePath
	}
	var collection chapter.Collection
	if filePath != "" {
		collection, err = chapter.Load(filePath)
		if err != nil {
			return fmt.Errorf("cannot load chapters from %s: %w", filePath, err)
		}
	} else {
		collection, err = content.Chapters()
		if err != nil {
			return fmt.Errorf("embedded chapter bundle is corrupt: %w", err)
		}
	}

	renderer := &diagram.CommandRenderer{
		Command: cfg.RendererCommand,
		Args:    cfg.RendererArgs,
	}

	// Background logging (from diagram render commands) is routed
	// through a TUILogHandler that displays warnings and errors in the
	// status bar instead of writing to stderr (which would corrupt the
	// alt-screen display). An optional file logger captures all records
	// to a JSON file for post-mortem debugging.
	tuiHandler := bookui.NewTUILogHandler(slog.LevelWarn)

	if logOutput != "" {
		fileHandler, fileCloser, fileErr := openFileLogHandler(logOutput)
		if fileErr != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, fileErr)
		}
		defer fileCloser()
		slog.SetDefault(slog.New(fanoutHandler{tuiHandler, fileHandler}))
	} else {
		slog.SetDefault(slog.New(tuiHandler))
	}

	model := bookui.NewModel(collection, renderer)
	model.SetZoomStep(cfg.ZoomStep)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	tuiHandler.SetProgram(program)

	slog.Info("viewer starting",
		"chapters", len(collection),
		"renderer", cfg.RendererCommand,
	)

	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Xiyou diagram viewer — interactive terminal UI for illustrated chapters.

By default, shows the chapter bundle embedded in the binary. Use
--file to load an alternate YAML bundle (plain or zstd-compressed).

Diagram sources are rendered to ASCII by an external command (default:
mermaid-ascii) that reads mermaid markup on stdin and writes the
rendered diagram to stdout. Configure the command and its arguments in
the config file, or override it with --renderer.

Usage:
  xiyou-diagrams [flags]

Examples:
  # Open the viewer with the embedded chapters
  xiyou-diagrams

  # Open a bundle from disk
  xiyou-diagrams --file chapters.yaml.zst

  # Use a different diagram renderer
  xiyou-diagrams --renderer my-mermaid-tool

  # Capture debug logs while running
  xiyou-diagrams --log-output /tmp/xiyou.log

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler that writes to the
// given file path. Returns the handler, a cleanup function to close
// the file, and any error. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
