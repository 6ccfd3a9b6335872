// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// FileStore implements [Store] on a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the saved cookies. A missing file yields (nil, nil).
func (store *FileStore) Load(_ context.Context) ([]*http.Cookie, error) {
	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: read %s: %w", store.path, err)
	}

	var saved record
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("credstore: decode %s: %w", store.path, err)
	}

	return saved.cookies(), nil
}

// Save writes the cookies atomically (temp file + rename) with mode 0600.
func (store *FileStore) Save(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return store.Clear(ctx)
	}

	data, err := json.MarshalIndent(toRecord(cookies), "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}

	if err := os.Rename(tmpName, store.path); err != nil {
		return fmt.Errorf("credstore: rename: %w", err)
	}

	return nil
}

// Clear deletes the credentials file. A missing file is not an error.
func (store *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove %s: %w", store.path, err)
	}
	return nil
}
