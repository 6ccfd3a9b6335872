// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/vizion/internal/app"
	"github.com/taibuivan/vizion/internal/auth"
	"github.com/taibuivan/vizion/internal/images"
)

// # Session Commands

func (r *runner) registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "display name", Required: true},
			&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "password (read from stdin when omitted)", EnvVars: []string{"VIZION_PASSWORD"}},
			&cli.StringFlag{Name: "confirm-password", Usage: "password confirmation (defaults to --password)"},
		},
		Action: func(c *cli.Context) error {
			password, err := r.password(c)
			if err != nil {
				return err
			}

			confirm := c.String("confirm-password")
			if confirm == "" {
				confirm = password
			}

			form := auth.SignUpForm{
				Name:            c.String("name"),
				Email:           c.String("email"),
				Password:        password,
				ConfirmPassword: confirm,
			}
			if err := form.Validate(); err != nil {
				return err
			}

			return r.withApp(c, func(ctx context.Context, application *app.App) error {
				if err := application.Session.Register(ctx, form.Input()); err != nil {
					return err
				}
				r.printf("Account created successfully\n")
				return nil
			})
		},
	}
}

func (r *runner) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "password (read from stdin when omitted)", EnvVars: []string{"VIZION_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			password, err := r.password(c)
			if err != nil {
				return err
			}

			input := auth.LoginInput{Email: strings.TrimSpace(c.String("email")), Password: password}
			if err := input.Validate(); err != nil {
				return err
			}

			return r.withApp(c, func(ctx context.Context, application *app.App) error {
				if err := application.Session.Login(ctx, input); err != nil {
					return err
				}
				r.printf("Signed in successfully\n")
				return nil
			})
		},
	}
}

func (r *runner) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "sign out",
		Action: func(c *cli.Context) error {
			return r.withApp(c, func(ctx context.Context, application *app.App) error {
				// The local session is gone even when the server call fails.
				if err := application.Session.Logout(ctx); err != nil {
					return err
				}
				r.printf("Signed out successfully\n")
				return nil
			})
		},
	}
}

func (r *runner) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in user",
		Action: func(c *cli.Context) error {
			return r.withApp(c, func(ctx context.Context, application *app.App) error {
				checked := application.Session.Initialize(ctx)
				if checked.IsFailed() {
					return checked.Err()
				}

				user, ok := checked.Value()
				if !ok {
					r.printf("Not signed in\n")
					return nil
				}

				r.printf("%s <%s>\n", user.Name, user.Email)
				r.printf("ID:      %s\n", user.ID)
				r.printf("Joined:  %s\n", images.FormatCreated(user.CreatedAt))
				return nil
			})
		},
	}
}

func (r *runner) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "check that the API (and credential Redis) can be reached",
		Action: func(c *cli.Context) error {
			return r.withApp(c, func(ctx context.Context, application *app.App) error {
				report := application.Health(ctx)
				for _, check := range report.Checks {
					state := "ok"
					if !check.OK {
						state = "down: " + check.Error
					}
					r.printf("%-6s %s (%d ms)\n", check.Name, state, check.Latency.Milliseconds())
				}
				if !report.Ready() {
					return fmt.Errorf("status: %s", report.Status)
				}
				return nil
			})
		},
	}
}

// password returns --password, or the first line of stdin.
func (r *runner) password(c *cli.Context) (string, error) {
	if password := c.String("password"); password != "" {
		return password, nil
	}

	line, err := bufio.NewReader(r.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
