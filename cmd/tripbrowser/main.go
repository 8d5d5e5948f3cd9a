// tripbrowser is an interactive terminal client for the trips API.
//
// Usage:
//
//	tripbrowser [flags]
//
// Flags override the matching environment variables (TRIPS_API_BASE,
// STORAGE_BACKEND, STORAGE_PATH, LOG_LEVEL, PAGE_SIZE). Type 'help' at the
// prompt for the command list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/pkordes/trip-browser/internal/app"
	"github.com/pkordes/trip-browser/internal/cli"
	"github.com/pkordes/trip-browser/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	// The REPL is quieter than the server by default.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	fs := flag.NewFlagSet("tripbrowser", flag.ContinueOnError)
	fs.StringVar(&cfg.TripsAPIBase, "api", cfg.TripsAPIBase, "base URL of the trips API")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "daily pick storage: memory, file, badger, redis or postgres")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "directory for the file and badger backends")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "trips per page")
	startURL := fs.StringP("url", "u", "/", "initial location, e.g. '/?tags=beach&page=2'")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so they never interleave with listings on stdout.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := app.New(ctx, cfg, logger, *startURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	return repl(ctx, cli.NewSession(a, os.Stdout))
}

// repl reads command lines until quit, EOF or Ctrl-C.
func repl(ctx context.Context, s *cli.Session) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(cli.Complete)

	history := cli.HistoryPath()
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, history)

	fmt.Println("tripbrowser - type 'help' for available commands.")
	if err := s.Exec(ctx, "show"); err != nil {
		return err
	}

	for {
		input, err := line.Prompt("trips> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		err = s.Exec(ctx, input)
		if errors.Is(err, cli.ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
