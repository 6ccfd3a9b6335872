// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package transport is the single point of contact between the client and the
Vizion REST API.

It hides every transport concern from the services built on top of it:

  - URL building: configured base URL + relative path.
  - Credentials: an [http.CookieJar] attaches the session cookie to every
    request. No caller ever reads or writes the token.
  - Encoding: JSON bodies, multipart uploads, the {message, data} envelope.
  - Failures: every failure becomes an [*apperr.APIError], either from the
    server's {code, message, errors} body or synthesized (UNKNOWN_ERROR,
    NETWORK_ERROR).
  - Tracing: an X-Request-ID per call and one structured log line per call.

There is no caching and no retry at this layer. No client timeout is set; the
context and the network stack's defaults bound each call.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/ctxutil"
)

// maxErrorBody bounds how much of a failed response is read for its error envelope.
const maxErrorBody = 1 << 20

var (
	// ErrMalformedResponse is the cause of every NETWORK_ERROR raised for a
	// response that arrived but could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrMissingData is the cause of the NETWORK_ERROR returned when a success
	// envelope carries no data for an operation that needs it.
	ErrMissingData = fmt.Errorf("%w: missing data", ErrMalformedResponse)
)

// # Contracts & Types

// Envelope is the success body of every API call: {message, data}.
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HasData reports whether the envelope carries a non-null data member.
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// errorBody is the failure body: {code, message, errors?}.
type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// Options configures a [Client].
type Options struct {
	// BaseURL is the absolute API root, e.g. "http://localhost:3000/api".
	BaseURL string
	// HTTPClient is optional. When its Jar is nil a cookie jar is installed.
	HTTPClient *http.Client
	// Logger receives one entry per request. Defaults to slog.Default().
	Logger *slog.Logger
	// RateLimit caps requests per second. Zero disables throttling.
	RateLimit float64
	// Burst is the token bucket size used with RateLimit. Defaults to 1.
	Burst int
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Client issues authenticated requests to the API.
//
// # Concurrency
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL   string
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	userAgent string
}

// New validates the options and constructs a [Client].
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("transport: invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("transport: base URL %q must be absolute", opts.BaseURL)
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("transport: cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	client := &Client{
		baseURL:   base.String(),
		base:      base,
		http:      httpClient,
		logger:    opts.Logger,
		userAgent: opts.UserAgent,
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	if client.userAgent == "" {
		client.userAgent = constants.UserAgent
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return client, nil
}

// BaseURL returns the normalized API root (no trailing slash).
func (c *Client) BaseURL() string { return c.baseURL }

// # JSON Operations

// Get issues a GET request to path.
func (c *Client) Get(ctx context.Context, path string) (*Envelope, error) {
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

// PostJSON issues a POST request with body encoded as JSON. A nil body sends
// no payload.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// Delete issues a DELETE request to path.
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.doJSON(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			// The request never left the client; the body is unusable.
			return nil, apperr.Network(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	header := http.Header{}
	header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	return c.do(ctx, method, c.resolve(path), path, reader, header)
}

// # Multipart Operations

// PostMultipart issues a POST request with form encoded as multipart/form-data.
// The boundary is generated by the encoder; no JSON content type is sent.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form) (*Envelope, error) {
	payload, contentType, err := form.encode()
	if err != nil {
		return nil, apperr.Network(fmt.Errorf("encode multipart body: %w", err))
	}

	header := http.Header{}
	header.Set(constants.HeaderContentType, contentType)
	header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	return c.do(ctx, http.MethodPost, c.resolve(path), path, payload, header)
}

// # Raw Downloads

// Download streams the resource at rawURL (absolute, e.g. a presigned image
// URL) into w and returns the number of bytes written.
//
// Failures are normalized exactly like API calls. Cookies are only attached
// when the jar holds some for rawURL's host.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return 0, apperr.Network(fmt.Errorf("invalid download URL %q", rawURL))
	}

	response, finish, err := c.send(ctx, http.MethodGet, target.String(), target.Path, nil, http.Header{})
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		apiErr := c.readError(response)
		finish(response.StatusCode, apiErr)
		return 0, apiErr
	}

	written, err := io.Copy(w, response.Body)
	if err != nil {
		apiErr := apperr.Network(err)
		finish(response.StatusCode, apiErr)
		return written, apiErr
	}

	finish(response.StatusCode, nil)
	return written, nil
}

// # Credentials

// ExportCookies returns the cookies the jar would send to the API.
// Used only to persist the session between processes.
func (c *Client) ExportCookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// ImportCookies loads previously exported cookies into the jar.
func (c *Client) ImportCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	scoped := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		copied := *cookie
		if copied.Path == "" {
			copied.Path = "/"
		}
		scoped = append(scoped, &copied)
	}
	c.http.Jar.SetCookies(c.base, scoped)
}

// # Decoding

// DecodeData unmarshals the envelope's data member into T.
//
// A missing or null data member, or data of the wrong shape, is a malformed
// response and reported as NETWORK_ERROR.
func DecodeData[T any](envelope *Envelope) (T, error) {
	var value T
	if envelope == nil || !envelope.HasData() {
		return value, apperr.Network(ErrMissingData)
	}
	if err := json.Unmarshal(envelope.Data, &value); err != nil {
		return value, apperr.Network(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}
	return value, nil
}

// # Request Pipeline

// resolve joins the base URL and a relative path.
func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// do sends the request and decodes the {message, data} envelope.
func (c *Client) do(ctx context.Context, method, target, path string, body io.Reader, header http.Header) (*Envelope, error) {
	response, finish, err := c.send(ctx, method, target, path, body, header)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		apiErr := c.readError(response)
		finish(response.StatusCode, apiErr)
		return nil, apiErr
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		apiErr := apperr.Network(err)
		finish(response.StatusCode, apiErr)
		return nil, apiErr
	}

	envelope := &Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, envelope); err != nil {
			apiErr := apperr.Network(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
			finish(response.StatusCode, apiErr)
			return nil, apiErr
		}
	}

	finish(response.StatusCode, nil)
	return envelope, nil
}

// send performs the HTTP exchange. On success the caller owns the response
// body and must call finish exactly once to emit the log entry.
func (c *Client) send(ctx context.Context, method, target, path string, body io.Reader, header http.Header) (*http.Response, func(int, error), error) {
	requestID := ctxutil.GetRequestID(ctx)
	if requestID == "" {
		requestID = ctxutil.NewRequestID()
	}

	logger := ctxutil.GetLogger(ctx, c.logger).With(
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
	)

	startTime := time.Now()
	finish := func(status int, err error) {
		logRequest(ctx, logger, status, time.Since(startTime), err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			apiErr := apperr.Network(err)
			finish(0, apiErr)
			return nil, nil, apiErr
		}
	}

	request, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		apiErr := apperr.Network(err)
		finish(0, apiErr)
		return nil, nil, apiErr
	}

	for key, values := range header {
		request.Header[key] = values
	}
	request.Header.Set(constants.HeaderXRequestID, requestID)
	request.Header.Set(constants.HeaderUserAgent, c.userAgent)

	response, err := c.http.Do(request)
	if err != nil {
		apiErr := apperr.Network(err)
		finish(0, apiErr)
		return nil, nil, apiErr
	}

	return response, finish, nil
}

// readError turns a non-success response into an [*apperr.APIError].
func (c *Client) readError(response *http.Response) *apperr.APIError {
	statusText := statusText(response)

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	if err != nil {
		return apperr.Unknown(response.StatusCode, statusText)
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apperr.Unknown(response.StatusCode, statusText)
	}

	apiErr := &apperr.APIError{
		Message: body.Message,
		Code:    body.Code,
		Status:  response.StatusCode,
		Errors:  body.Errors,
	}
	if apiErr.Code == "" {
		apiErr.Code = apperr.CodeUnknown
	}
	if apiErr.Message == "" {
		apiErr.Message = statusText
	}

	return apiErr
}

// # Helpers

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusText extracts the reason phrase of the status line ("Not Found"),
// falling back to the generic message.
func statusText(response *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(response.Status, strconv.Itoa(response.StatusCode)))
	if text == "" {
		text = http.StatusText(response.StatusCode)
	}
	if text == "" {
		text = apperr.DefaultMessage
	}
	return text
}

// logRequest writes the per-request entry. Successful calls log at debug so a
// normal CLI run stays quiet.
func logRequest(ctx context.Context, logger *slog.Logger, status int, latency time.Duration, err error) {
	logLevel := slog.LevelDebug

	switch {
	case err != nil && status == 0:
		logLevel = slog.LevelError
	case status >= 500:
		logLevel = slog.LevelError
	case status >= 400:
		logLevel = slog.LevelWarn
	}

	attrs := []any{
		slog.Int("status", status),
		slog.Int64("latency_ms", latency.Milliseconds()),
	}
	if apiErr := apperr.As(err); apiErr != nil {
		attrs = append(attrs, slog.String("code", apiErr.Code), slog.String("error", apiErr.Message))
	}

	logger.Log(ctx, logLevel, "api_request_finished", attrs...)
}
