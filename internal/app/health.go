// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/constants"
	redisstore "github.com/taibuivan/vizion/internal/platform/redis"
	"github.com/taibuivan/vizion/internal/platform/transport"
)

// Health status values.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
)

// Check is the outcome of probing one dependency.
type Check struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// HealthReport summarizes every dependency of the client.
type HealthReport struct {
	Status string  `json:"status"`
	Checks []Check `json:"checks"`
}

// Ready reports whether every check passed.
func (report HealthReport) Ready() bool { return report.Status == StatusReady }

// Health checks the API and, when configured, the credential Redis.
//
// The API counts as reachable as soon as it answers, whatever the status or
// body; only a failure to get a response marks it down.
func (a *App) Health(ctx context.Context) HealthReport {
	checks := []Check{a.check(ctx, "api", func(ctx context.Context) error {
		_, err := a.Transport.Get(ctx, constants.PathMe)
		if apperr.IsNetwork(err) && !errors.Is(err, transport.ErrMalformedResponse) {
			return err
		}
		return nil
	})}

	if a.redis != nil {
		checks = append(checks, a.check(ctx, "redis", func(ctx context.Context) error {
			return redisstore.Ping(ctx, a.redis)
		}))
	}

	report := HealthReport{Status: StatusReady, Checks: checks}
	for _, check := range checks {
		if !check.OK {
			report.Status = StatusDegraded
		}
	}
	return report
}

func (a *App) check(ctx context.Context, name string, fn func(context.Context) error) Check {
	started := time.Now()
	err := fn(ctx)

	check := Check{Name: name, OK: err == nil, Latency: time.Since(started)}
	if err != nil {
		check.Error = err.Error()
		a.Logger.Warn("health_check_failed", slog.String("dependency", name), slog.Any("error", err))
	}
	return check
}
