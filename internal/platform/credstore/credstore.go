// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package credstore persists the transport's cookie jar between CLI runs.

The session token is an opaque cookie. Nothing in this package inspects it:
cookies are saved and restored wholesale, so a process started after `vizion
login` carries the same credential the API handed out.

Implementations:

  - [FileStore]: a JSON file readable only by the current user.
  - [RedisStore]: a Redis key with a TTL, for credentials shared across hosts.
*/
package credstore

import (
	"context"
	"net/http"
	"time"
)

// Store loads and saves the credential cookies of one API endpoint.
type Store interface {
	// Load returns the saved cookies. Nothing saved yet is not an error:
	// it returns (nil, nil).
	Load(ctx context.Context) ([]*http.Cookie, error)
	// Save replaces the saved cookies. Saving an empty set clears the store.
	Save(ctx context.Context, cookies []*http.Cookie) error
	// Clear removes any saved cookies.
	Clear(ctx context.Context) error
}

// record is the persisted form of a cookie jar snapshot.
type record struct {
	SavedAt time.Time      `json:"saved_at"`
	Cookies []storedCookie `json:"cookies"`
}

// storedCookie keeps what [http.CookieJar.Cookies] exposes: name and value.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toRecord(cookies []*http.Cookie) record {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	return record{SavedAt: time.Now().UTC(), Cookies: stored}
}

func (r record) cookies() []*http.Cookie {
	if len(r.Cookies) == 0 {
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies
}
