// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/ctxutil"
)

type userIDKey struct{}

// # Request Tracing

// requestID echoes the caller's X-Request-ID, or generates one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := request.Header.Get(constants.HeaderXRequestID)
		if id == "" {
			id = ctxutil.NewRequestID()
		}

		ctx := ctxutil.WithRequestID(request.Context(), id)
		writer.Header().Set(constants.HeaderXRequestID, id)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// structuredLogger logs one line per request and injects a request logger
// into the context.
func structuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request.WithContext(ctx))

			level := slog.LevelInfo
			if recorder.status >= 500 {
				level = slog.LevelError
			} else if recorder.status >= 400 {
				level = slog.LevelWarn
			}

			requestLogger.Log(ctx, level, "http_request_finished",
				slog.Int("status", recorder.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
			)
		})
	}
}

// # Reliability

// panicRecovery turns a handler panic into a 500 INTERNAL_ERROR.
func panicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stackTrace := make([]byte, 2048)
					length := runtime.Stack(stackTrace, false)

					ctxutil.GetLogger(request.Context(), logger).ErrorContext(request.Context(), "panic_recovered",
						slog.Any("error", err),
						slog.String("stack", string(stackTrace[:length])),
					)

					writeInternal(writer)
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Authentication

// authenticate rejects requests without a valid session cookie.
func (server *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		cookie, err := request.Cookie(constants.SessionCookieName)
		if err != nil {
			writeUnauthorized(writer, "Authentication required")
			return
		}

		userID, err := server.tokens.verify(cookie.Value)
		if err != nil || !server.userExists(userID) {
			writeUnauthorized(writer, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(request.Context(), userIDKey{}, userID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// currentUserID returns the id stored by authenticate.
func currentUserID(request *http.Request) string {
	id, _ := request.Context().Value(userIDKey{}).(string)
	return id
}
