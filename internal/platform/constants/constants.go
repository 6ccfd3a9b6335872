// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the whole client.

Categories:

  - Metadata: application name and version reported to the API.
  - Endpoints: relative paths of the REST API.
  - Wire: header names, content types, multipart field names.
  - Limits: values enforced by the server that the client documents.

Using this package keeps magic strings out of services and stores.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "vizion"
	AppVersion = "0.1.0-dev"
	UserAgent  = "vizion-cli/" + AppVersion
)

// # Endpoints

const (
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
	PathMe       = "/auth/me"
	PathLogout   = "/auth/logout"
	PathImages   = "/images"
)

// # Wire

const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderUserAgent   = "User-Agent"
	HeaderXRequestID  = "X-Request-ID"

	ContentTypeJSON = "application/json"

	// ImageFormField is the multipart field the API reads the upload from.
	ImageFormField = "image"

	// SessionCookieName is the cookie the API uses for its session token.
	// Only the fake API reads it; the client treats cookies as opaque.
	SessionCookieName = "token"
)

// # Limits

const (
	// MaxUploadSize is enforced by the server. The client does not pre-check it.
	MaxUploadSize = 10 << 20

	// SessionTTL is the lifetime of a session token issued by the fake API.
	SessionTTL = 7 * 24 * time.Hour

	// MaxConcurrentUploads bounds the CLI's parallel uploads.
	MaxConcurrentUploads = 4
)

// # Redis Prefixes

const (
	RedisPrefixCredentials = "vizion:credentials:"
)
