// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app is the composition root of the Vizion client.

It owns the two stores for the lifetime of one process:

	application, err := app.New(ctx, cfg, log)
	if err != nil {
	    return err
	}
	defer application.Close(ctx)

	application.Start(ctx)

Startup Sequence:

 1. Build the transport (base URL, cookie jar, optional throttle).
 2. Open the credential store (Redis when configured, otherwise a file)
    and restore the saved cookies into the jar.
 3. Build the services and the two stores.

Start runs the session check and the first image load concurrently. Close
saves the cookies, drops every subscription and releases Redis.

No globals: everything is reachable from the [App] value only.
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/vizion/internal/auth"
	"github.com/taibuivan/vizion/internal/images"
	"github.com/taibuivan/vizion/internal/platform/config"
	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/credstore"
	redisstore "github.com/taibuivan/vizion/internal/platform/redis"
	"github.com/taibuivan/vizion/internal/platform/transport"
	"github.com/taibuivan/vizion/pkg/result"
)

// App holds every long-lived object of a client process.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Transport *transport.Client
	Auth      *auth.Service
	Gallery   *images.Service

	Session *auth.SessionStore
	Images  *images.CollectionStore

	credentials credstore.Store
	redis       *goredis.Client
}

// New wires the client. It performs no API call; only Redis is contacted
// when configured.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	client, err := transport.New(transport.Options{
		BaseURL:   cfg.APIURL,
		Logger:    log,
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
		UserAgent: constants.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("app: failed to build transport: %w", err)
	}

	application := &App{
		Config:    cfg,
		Logger:    log,
		Transport: client,
	}

	if err := application.openCredentials(ctx); err != nil {
		return nil, err
	}

	cookies, err := application.credentials.Load(ctx)
	if err != nil {
		// Unreadable credentials mean signed out.
		log.Warn("credentials_load_failed", slog.Any("error", err))
	}
	client.ImportCookies(cookies)

	application.Auth = auth.NewService(client)
	application.Gallery = images.NewService(client)
	application.Session = auth.NewSessionStore(application.Auth, log)
	application.Images = images.NewCollectionStore(application.Gallery, log)

	log.Debug("app_initialized",
		slog.String("api_url", client.BaseURL()),
		slog.Bool("redis_credentials", cfg.UsesRedis()),
		slog.Int("restored_cookies", len(cookies)),
	)

	return application, nil
}

// Start runs the session check and the first image load concurrently and
// returns once both have settled. The image load's outcome stays readable in
// the image store; the session check's outcome is returned.
func (a *App) Start(ctx context.Context) result.Result[*auth.User] {
	var checked result.Result[*auth.User]

	var group errgroup.Group
	group.Go(func() error {
		checked = a.Session.Initialize(ctx)
		return nil
	})
	group.Go(func() error {
		return a.Images.Load(ctx)
	})

	if err := group.Wait(); err != nil {
		a.Logger.DebugContext(ctx, "startup_images_unavailable", slog.Any("error", err))
	}
	return checked
}

// SaveCredentials persists the jar's current cookies. An empty jar clears
// the saved credentials.
func (a *App) SaveCredentials(ctx context.Context) error {
	return a.credentials.Save(ctx, a.Transport.ExportCookies())
}

// Close persists the credentials and releases every resource. It is safe to
// call once; the stores must not be used afterwards.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := a.SaveCredentials(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Session.Close()
	a.Images.Close()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: failed to close redis: %w", err))
		}
	}

	a.Logger.Debug("app_closed")
	return errors.Join(errs...)
}

func (a *App) openCredentials(ctx context.Context) error {
	if !a.Config.UsesRedis() {
		a.credentials = credstore.NewFileStore(a.Config.CredentialsFile)
		return nil
	}

	client, err := redisstore.NewClient(ctx, a.Config.RedisURL, a.Logger)
	if err != nil {
		return fmt.Errorf("app: failed to open credential store: %w", err)
	}

	a.redis = client
	a.credentials = credstore.NewRedisStore(client, a.Config.Profile, a.Config.CredentialsTTL)
	return nil
}
