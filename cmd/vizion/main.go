// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command vizion is the command-line client of the Vizion image gallery.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Install the interrupt handler.
//  4. Hand the arguments to the command tree.
//
// No business logic lives here. Commands build their own [app.App].
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/vizion/internal/cli"
	"github.com/taibuivan/vizion/internal/platform/config"
	"github.com/taibuivan/vizion/internal/platform/constants"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// stdout belongs to command output; startup errors go to stderr.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	// ── 3. Interrupts ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// ── 4. Commands ───────────────────────────────────────────────────────
	code := cli.Run(ctx, os.Args, cfg, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. Command errors are returned and printed
// by the command tree.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
