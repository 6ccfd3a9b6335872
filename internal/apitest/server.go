// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apitest runs an in-memory fake of the Vizion REST API for tests.

It speaks the real wire contract over real HTTP: the {message, data}
envelope, the {code, message, errors} error body, an HttpOnly session cookie
holding a signed token, multipart uploads decoded as real images, and
display URLs that can be downloaded.

Usage:

	api := apitest.New(t)
	client, _ := transport.New(transport.Options{BaseURL: api.APIURL()})

Fault injection:

  - Fail: the next matching request answers with a given status and body.
  - Pause: the next matching response is held until the test releases it.
*/
package apitest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vizion/internal/auth"
	"github.com/taibuivan/vizion/internal/images"
)

// APIPrefix is where the API is mounted; [Server.APIURL] includes it.
const APIPrefix = "/api"

// account is a registered user as the fake stores it.
type account struct {
	user         auth.User
	passwordHash string
}

// Server is a running fake API.
type Server struct {
	httpServer *httptest.Server
	logger     *slog.Logger
	tokens     *tokenIssuer

	mu       sync.Mutex
	accounts map[string]*account       // by email
	gallery  map[string][]images.Image // by user id, newest first
	files    map[string][]byte         // by storage key
	faults   map[string][]fault        // by route
	gates    map[string][]*Gate        // by route
	hits     map[string]int            // by route
	issued   []*Gate
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	tokens, err := newTokenIssuer()
	if err != nil {
		t.Fatalf("apitest: %v", err)
	}

	server := &Server{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens:   tokens,
		accounts: make(map[string]*account),
		gallery:  make(map[string][]images.Image),
		files:    make(map[string][]byte),
		faults:   make(map[string][]fault),
		gates:    make(map[string][]*Gate),
		hits:     make(map[string]int),
	}
	server.httpServer = httptest.NewServer(server.routes())
	t.Cleanup(server.Close)

	return server
}

// URL returns the server root, e.g. "http://127.0.0.1:51234".
func (server *Server) URL() string { return server.httpServer.URL }

// APIURL returns the base URL clients are configured with.
func (server *Server) APIURL() string { return server.httpServer.URL + APIPrefix }

// Close releases every gate and stops the server. Safe to call more than once.
func (server *Server) Close() {
	server.mu.Lock()
	for _, gate := range server.issued {
		gate.Release()
	}
	server.mu.Unlock()

	server.httpServer.Close()
}

// Hits returns how many requests reached method + path. The path is relative
// to the API root, e.g. "/images".
func (server *Server) Hits(method, path string) int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.hits[route(method, path)]
}

// # Routing

func (server *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(structuredLogger(server.logger))
	router.Use(panicRecovery(server.logger))
	router.Use(server.intercept)

	router.Route(APIPrefix, func(r chi.Router) {
		r.Post("/auth/register", server.register)
		r.Post("/auth/login", server.login)
		r.Post("/auth/logout", server.logout)

		r.Group(func(r chi.Router) {
			r.Use(server.authenticate)

			r.Get("/auth/me", server.me)
			r.Post("/images", server.uploadImage)
			r.Get("/images", server.listImages)
			r.Get("/images/{id}", server.getImage)
			r.Delete("/images/{id}", server.deleteImage)
		})
	})

	router.Get("/files/*", server.serveFile)

	return router
}

// route is the key used for hits, faults and gates.
func route(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// routeOf derives the key of an incoming request.
func routeOf(request *http.Request) string {
	return route(request.Method, strings.TrimPrefix(request.URL.Path, APIPrefix))
}
