// GPT-Manifold: an interactive assistant that asks a language model to
// evaluate Manifold Markets questions and, with your say-so, bets on them.
//
// Architecture:
//
//	main.go              : entry point: loads .env and config, wires clients, runs the menu
//	menu/machine.go      : navigation state machine (browse, predict, confirm, autonomous)
//	engine/engine.go     : prediction pipeline: prompt, complete, parse, bet, comment
//	manifold/client.go   : REST client for the Manifold API (markets, groups, bets, comments)
//	llm/completion.go    : chat-completion client for OpenAI
//	tags/parser.go       : extracts the <YES>/<NO>/<ABSTAIN/> action from a reply
//	audit/session.go     : per-run log of every prompt and action in autonomous mode
//	risk/guard.go        : max-bet and balance checks before a bet is placed
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gpt-manifold/internal/config"
	"gpt-manifold/internal/engine"
	"gpt-manifold/internal/llm"
	"gpt-manifold/internal/manifold"
	"gpt-manifold/internal/menu"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	root := &cobra.Command{
		Use:           "gptmanifold",
		Short:         "Let a language model evaluate and bet on Manifold Markets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", cfgPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr; stdout belongs to the menus.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)

	if cfg.DryRun {
		logger.Warn("DRY-RUN MODE: no real bets or comments will be posted")
	}

	client := manifold.NewClient(*cfg, logger)
	completer := llm.NewOpenAI(cfg.OpenAI, logger)
	eng := engine.New(*cfg, client, completer, logger)
	m := menu.New(*cfg, eng, menu.NewTerminal(os.Stdout, 10), logger)

	logger.Info("gpt-manifold started", "base_url", cfg.Manifold.BaseURL, "dry_run", cfg.DryRun)
	return m.Run(ctx)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
