// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli is the command-line front end of the Vizion client.

Every command builds an [app.App], runs one store operation, prints the
outcome and closes the app, which persists the session cookies for the next
command.

Output conventions:

  - stdout: results and success notices ("Signed in successfully").
  - stderr: error messages and structured JSON logs.
  - exit code 1 on any error.
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/vizion/internal/app"
	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/config"
	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/ctxutil"
)

// errSignedOut is returned by commands that need a session.
var errSignedOut = errors.New("Please sign in first")

// # Entry Point

// Run executes the command line args (args[0] is the program name) and
// returns the process exit code.
func Run(ctx context.Context, args []string, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	runner := &runner{
		cfg:    cfg,
		stdin:  stdin,
		stdout: &lockedWriter{w: stdout},
		stderr: &lockedWriter{w: stderr},
	}

	if err := runner.command().RunContext(ctx, args); err != nil {
		runner.printError(err)
		return 1
	}
	return 0
}

// runner carries what every command needs.
type runner struct {
	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout *lockedWriter
	stderr *lockedWriter
}

func (r *runner) command() *cli.App {
	return &cli.App{
		Name:      constants.AppName,
		Usage:     "Manage your Vizion image gallery",
		Version:   constants.AppVersion,
		Reader:    r.stdin,
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		// Errors are printed and mapped to an exit code by Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "base URL of the Vizion API",
				Value: r.cfg.APIURL,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every API call to stderr",
				Value: r.cfg.Debug,
			},
		},
		Before: r.before,
		Commands: []*cli.Command{
			r.registerCommand(),
			r.loginCommand(),
			r.logoutCommand(),
			r.whoamiCommand(),
			r.statusCommand(),
			r.imagesCommand(),
		},
	}
}

// before applies the global flags on top of the loaded configuration.
func (r *runner) before(c *cli.Context) error {
	cfg := *r.cfg
	cfg.APIURL = c.String("api-url")
	cfg.Debug = c.Bool("debug")
	r.cfg = &cfg

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	r.logger = slog.New(slog.NewJSONHandler(r.stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))

	return nil
}

// # Application Lifecycle

// withApp builds the application for one command and always closes it.
func (r *runner) withApp(c *cli.Context, fn func(ctx context.Context, application *app.App) error) (err error) {
	ctx := ctxutil.WithRequestID(c.Context, ctxutil.NewRequestID())
	ctx = ctxutil.WithLogger(ctx, r.logger)

	application, err := app.New(ctx, r.cfg, r.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(ctx); closeErr != nil {
			r.logger.WarnContext(ctx, "app_close_failed", slog.Any("error", closeErr))
		}
	}()

	return fn(ctx, application)
}

// withSession is withApp for commands that need a signed-in user. It runs the
// startup sequence first, so the image store is loaded on entry.
func (r *runner) withSession(c *cli.Context, fn func(ctx context.Context, application *app.App) error) error {
	return r.withApp(c, func(ctx context.Context, application *app.App) error {
		checked := application.Start(ctx)
		if checked.IsFailed() {
			return checked.Err()
		}
		if !application.Session.IsAuthenticated() {
			return errSignedOut
		}
		return fn(ctx, application)
	})
}

// # Output

// lockedWriter serializes writes from concurrent commands.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (r *runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.stdout, format, args...)
}

// printError prints the displayable message and any field errors.
func (r *runner) printError(err error) {
	_, _ = fmt.Fprintf(r.stderr, "Error: %s\n", displayMessage(err))

	if ae := apperr.As(err); ae != nil {
		for _, fe := range ae.Errors {
			_, _ = fmt.Fprintf(r.stderr, "  - %s: %s\n", fe.Field, fe.Message)
		}
	}
}

// displayMessage prefers the API's message over the wrapped chain. The
// generic wrappers of the stores already read as messages.
func displayMessage(err error) string {
	var file fileError
	if errors.As(err, &file) {
		return file.Error()
	}
	if ae := apperr.As(err); ae != nil {
		return ae.Message
	}
	return err.Error()
}

// # Input

// argument returns the single positional argument of c.
func argument(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", name)
	}
	value := strings.TrimSpace(c.Args().First())
	if value == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	return value, nil
}
