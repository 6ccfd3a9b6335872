// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/ctxutil"
	"github.com/taibuivan/vizion/internal/platform/transport"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newClient(t *testing.T, handler http.HandlerFunc) (*transport.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := transport.New(transport.Options{BaseURL: server.URL + "/api/"})
	require.NoError(t, err)

	return client, server
}

/*
TestNew_InvalidBaseURL rejects relative or unparsable roots.
*/
func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "/api", "localhost:3000", "http://[::1"} {
		_, err := transport.New(transport.Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

/*
TestGet_Success checks URL building, headers and envelope decoding.
*/
func TestGet_Success(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.Contains(t, r.Header.Get("User-Agent"), "vizion-cli/")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"ok","data":{"id":"u1"}}`)
	})

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	envelope, err := client.Get(ctx, "/auth/me")
	require.NoError(t, err)
	assert.Equal(t, "ok", envelope.Message)

	data, err := transport.DecodeData[map[string]string](envelope)
	require.NoError(t, err)
	assert.Equal(t, "u1", data["id"])
}

/*
TestPostJSON_Body checks JSON encoding and the empty-body variant.
*/
func TestPostJSON_Body(t *testing.T) {
	var bodies []string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		_, _ = io.WriteString(w, `{"message":"done","data":null}`)
	})

	_, err := client.PostJSON(context.Background(), "/auth/login", map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	envelope, err := client.PostJSON(context.Background(), "/auth/logout", nil)
	require.NoError(t, err)
	assert.False(t, envelope.HasData())

	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"email":"a@b.com"}`, bodies[0])
	assert.Empty(t, bodies[1])
}

/*
TestDelete_NoContent accepts an empty success body.
*/
func TestDelete_NoContent(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	envelope, err := client.Delete(context.Background(), "/images/img1")
	require.NoError(t, err)
	assert.False(t, envelope.HasData())

	_, err = transport.DecodeData[map[string]any](envelope)
	assert.ErrorIs(t, err, transport.ErrMissingData)
	assert.ErrorIs(t, err, transport.ErrMalformedResponse)
	assert.Equal(t, apperr.CodeNetwork, apperr.As(err).Code)
}

/*
TestErrors_Normalization covers structured, unstructured and partial error bodies.
*/
func TestErrors_Normalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
		wantErrors  int
	}{
		{
			name:        "structured",
			status:      http.StatusBadRequest,
			body:        `{"code":"VALIDATION_ERROR","message":"Invalid input","errors":[{"field":"email","message":"Invalid email"}]}`,
			wantCode:    "VALIDATION_ERROR",
			wantMessage: "Invalid input",
			wantErrors:  1,
		},
		{
			name:        "unparsable",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantCode:    apperr.CodeUnknown,
			wantMessage: "Bad Gateway",
		},
		{
			name:        "partial",
			status:      http.StatusNotFound,
			body:        `{}`,
			wantCode:    apperr.CodeUnknown,
			wantMessage: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Get(context.Background(), "/images")
			require.Error(t, err)

			apiErr := apperr.As(err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Len(t, apiErr.Errors, tt.wantErrors)
		})
	}
}

/*
TestNetworkError reports unreachable servers as NETWORK_ERROR with status 0.
*/
func TestNetworkError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	client, err := transport.New(transport.Options{BaseURL: "http://" + address + "/api"})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/auth/me")
	apiErr := apperr.As(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apperr.CodeNetwork, apiErr.Code)
	assert.Zero(t, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
	assert.NotNil(t, apiErr.Cause)
}

/*
TestMalformedSuccess reports an undecodable success body as NETWORK_ERROR.
*/
func TestMalformedSuccess(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<!doctype html>")
	})

	_, err := client.Get(context.Background(), "/images")
	assert.True(t, apperr.IsNetwork(err))
	assert.ErrorIs(t, err, transport.ErrMalformedResponse)
}

/*
TestPostMultipart checks the multipart encoding of an image upload.
*/
func TestPostMultipart(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)
		require.NotEmpty(t, params["boundary"])

		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "image", part.FormName())
		assert.Equal(t, `cat "one".png`, part.FileName())
		assert.Equal(t, "image/png", part.Header.Get("Content-Type"))

		content, _ := io.ReadAll(part)
		assert.Equal(t, pngHeader, content)

		_, _ = io.WriteString(w, `{"message":"uploaded","data":{"id":"img9"}}`)
	})

	form := transport.NewForm().AddFile("image", `cat "one".png`, pngHeader)
	envelope, err := client.PostMultipart(context.Background(), "/images", form)
	require.NoError(t, err)

	data, err := transport.DecodeData[map[string]string](envelope)
	require.NoError(t, err)
	assert.Equal(t, "img9", data["id"])
}

/*
TestCookies_CarriedAndExported verifies the jar attaches the session cookie
without any caller touching it, and that it can be exported and re-imported.
*/
func TestCookies_CarriedAndExported(t *testing.T) {
	client, server := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "opaque", Path: "/", HttpOnly: true})
			_, _ = io.WriteString(w, `{"message":"ok","data":{}}`)
		case "/api/auth/me":
			cookie, err := r.Cookie("token")
			if err != nil || cookie.Value != "opaque" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"code":"UNAUTHORIZED","message":"Not authenticated"}`)
				return
			}
			_, _ = io.WriteString(w, `{"message":"ok","data":{}}`)
		}
	})

	ctx := context.Background()
	_, err := client.Get(ctx, "/auth/me")
	assert.True(t, apperr.IsUnauthenticated(err))

	_, err = client.PostJSON(ctx, "/auth/login", map[string]string{})
	require.NoError(t, err)

	_, err = client.Get(ctx, "/auth/me")
	require.NoError(t, err)

	exported := client.ExportCookies()
	require.Len(t, exported, 1)

	// A fresh client with the imported jar is authenticated too
	other, err := transport.New(transport.Options{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	other.ImportCookies(exported)

	_, err = other.Get(ctx, "/auth/me")
	assert.NoError(t, err)
}

/*
TestDownload streams a raw resource and normalizes failures.
*/
func TestDownload(t *testing.T) {
	client, server := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/missing" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code></Error>`)
			return
		}
		_, _ = w.Write(pngHeader)
	})

	var buffer bytes.Buffer
	written, err := client.Download(context.Background(), server.URL+"/files/cat.png", &buffer)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngHeader)), written)
	assert.Equal(t, pngHeader, buffer.Bytes())

	_, err = client.Download(context.Background(), server.URL+"/files/missing", io.Discard)
	apiErr := apperr.As(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, apperr.CodeUnknown, apiErr.Code)

	_, err = client.Download(context.Background(), "relative/path", io.Discard)
	assert.True(t, apperr.IsNetwork(err))
}

/*
TestRateLimit_ContextCancelled surfaces a cancelled wait as NETWORK_ERROR.
*/
func TestRateLimit_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": []string{}})
	}))
	t.Cleanup(server.Close)

	client, err := transport.New(transport.Options{BaseURL: server.URL, RateLimit: 0.001, Burst: 1})
	require.NoError(t, err)

	// 1. The first call consumes the only token
	_, err = client.Get(context.Background(), "/images")
	require.NoError(t, err)

	// 2. The second would wait far longer than the context allows
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Get(ctx, "/images")
	assert.True(t, apperr.IsNetwork(err))
	assert.Zero(t, apperr.As(err).Status)
}
