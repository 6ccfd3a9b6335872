// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package images

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/notify"
	"github.com/taibuivan/vizion/pkg/slice"
)

// # Contracts & Types

// Gallery is the contract the store needs from the image endpoints.
// [*Service] implements it.
type Gallery interface {
	List(ctx context.Context) ([]Image, error)
	Get(ctx context.Context, id string) (*Image, error)
	Upload(ctx context.Context, content []byte, fileName string) (*Image, error)
	Delete(ctx context.Context, id string) error
}

// CollectionSnapshot is a copy of the store state handed to readers and
// subscribers.
type CollectionSnapshot struct {
	Images      []Image
	Filtered    []Image
	SearchQuery string
	IsLoading   bool
	Err         error
}

// mutation is a completed upload or delete, kept while a load is in flight
// so it can be replayed onto that load's result.
type mutation func([]Image) []Image

// CollectionStore owns the loaded image collection.
//
// # Ordering
//
// The collection is newest first and never holds two images with the same
// id. Concurrent uploads are not serialized: their final order follows
// completion order.
//
// # Loads racing mutations
//
// Every load takes a sequence number and only the newest one may apply its
// result. Uploads and deletes that complete while a load is in flight are
// journaled and replayed onto the load's result, so a completed delete is
// never resurrected and a completed upload is never lost.
//
// # Concurrency
//
// Safe for concurrent use. The lock is never held across a network call.
// Snapshots are queued under the lock and delivered after it is released, in
// the order the changes were made.
type CollectionStore struct {
	gallery Gallery
	logger  *slog.Logger

	mu      sync.Mutex
	images  []Image
	query   string
	loading bool
	err     error
	loadSeq uint64
	journal []mutation

	changes notify.Broadcaster[CollectionSnapshot]
}

// NewCollectionStore constructs an empty store marked as loading. The owner
// is expected to call [CollectionStore.Load] once right after construction.
func NewCollectionStore(gallery Gallery, logger *slog.Logger) *CollectionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionStore{
		gallery: gallery,
		logger:  logger.With(slog.String("store", "images")),
		images:  []Image{},
		loading: true,
	}
}

// # Loading

// Load replaces the collection with the server's. On failure the collection
// is emptied and the error is kept in [CollectionStore.Err] and returned.
// A load overtaken by a newer one discards its result and returns nil.
func (store *CollectionStore) Load(ctx context.Context) error {
	store.mu.Lock()
	store.loadSeq++
	seq := store.loadSeq
	store.loading = true
	store.err = nil
	store.journal = nil
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.changes.Flush()

	list, err := store.gallery.List(ctx)
	surfaced := apperr.Surface(err, "Failed to load images")

	store.mu.Lock()
	if seq != store.loadSeq {
		store.mu.Unlock()
		store.logger.DebugContext(ctx, "images_load_discarded", slog.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		store.images = []Image{}
		store.err = surfaced
	} else {
		collection := dedupe(list)
		for _, replay := range store.journal {
			collection = replay(collection)
		}
		store.images = collection
	}
	replayed := len(store.journal)
	store.journal = nil
	store.loading = false
	count := len(store.images)
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	if err != nil {
		store.logger.WarnContext(ctx, "images_load_failed", slog.Any("error", err))
	} else {
		store.logger.DebugContext(ctx, "images_loaded",
			slog.Int("count", count),
			slog.Int("replayed", replayed),
		)
	}

	store.changes.Flush()
	return surfaced
}

// Refresh reloads the collection. Same contract as [CollectionStore.Load].
func (store *CollectionStore) Refresh(ctx context.Context) error {
	return store.Load(ctx)
}

// # Mutations

// Upload sends a file and puts the returned image at the front of the
// collection. On failure the error is kept in [CollectionStore.Err] and
// returned.
func (store *CollectionStore) Upload(ctx context.Context, content []byte, fileName string) (*Image, error) {
	store.clearErr()

	img, err := store.gallery.Upload(ctx, content, fileName)
	if err != nil {
		return nil, store.fail(ctx, err, "Failed to upload image")
	}

	uploaded := *img
	store.mutate(func(collection []Image) []Image {
		return insertFront(collection, uploaded)
	})

	store.logger.DebugContext(ctx, "image_uploaded", slog.String("image_id", uploaded.ID))
	return &uploaded, nil
}

// Delete removes an image on the server, then from the collection. On
// failure the collection is untouched and the error is kept in
// [CollectionStore.Err] and returned.
func (store *CollectionStore) Delete(ctx context.Context, id string) error {
	store.clearErr()

	if err := store.gallery.Delete(ctx, id); err != nil {
		return store.fail(ctx, err, "Failed to delete image")
	}

	store.mutate(func(collection []Image) []Image {
		return slice.Remove(collection, func(img Image) bool { return img.ID == id })
	})

	store.logger.DebugContext(ctx, "image_deleted", slog.String("image_id", id))
	return nil
}

// SetSearchQuery changes the query the filtered view is derived from.
// No network call is made.
func (store *CollectionStore) SetSearchQuery(query string) {
	store.mu.Lock()
	store.query = query
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.changes.Flush()
}

// # Lookups

// Find returns the image with id from the loaded collection.
func (store *CollectionStore) Find(id string) (Image, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	index := slice.IndexOf(store.images, func(img Image) bool { return img.ID == id })
	if index < 0 {
		return Image{}, false
	}
	return store.images[index], true
}

// GetOrLoad resolves an image for a detail view. An empty collection is
// loaded first; an image missing from the collection is fetched on its own
// without being added to it.
func (store *CollectionStore) GetOrLoad(ctx context.Context, id string) (*Image, error) {
	if len(store.Images()) == 0 {
		if err := store.Load(ctx); err != nil {
			return nil, err
		}
	}

	if img, ok := store.Find(id); ok {
		return &img, nil
	}

	img, err := store.gallery.Get(ctx, id)
	if err != nil {
		return nil, apperr.Surface(err, "Failed to load image")
	}
	return img, nil
}

// # Readers

// Snapshot returns a copy of the current state.
func (store *CollectionStore) Snapshot() CollectionSnapshot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshotLocked()
}

// Images returns a copy of the collection, newest first.
func (store *CollectionStore) Images() []Image {
	store.mu.Lock()
	defer store.mu.Unlock()
	return slice.Clone(store.images)
}

// Filtered returns the collection filtered by the current search query.
func (store *CollectionStore) Filtered() []Image { return store.Snapshot().Filtered }

// SearchQuery returns the current search query as set.
func (store *CollectionStore) SearchQuery() string { return store.Snapshot().SearchQuery }

// IsLoading reports whether a load is in flight or has never settled.
func (store *CollectionStore) IsLoading() bool { return store.Snapshot().IsLoading }

// Err returns the error of the last failed operation, cleared when the next
// operation starts.
func (store *CollectionStore) Err() error { return store.Snapshot().Err }

// # Subscriptions

// Subscribe registers fn to receive a snapshot after every change.
// Close the returned subscription to unregister.
func (store *CollectionStore) Subscribe(fn func(CollectionSnapshot)) *notify.Subscription {
	return store.changes.Subscribe(fn)
}

// Close unregisters every subscriber. The store must not be used afterwards.
func (store *CollectionStore) Close() {
	store.changes.Clear()
}

// # Helpers

func (store *CollectionStore) snapshotLocked() CollectionSnapshot {
	images := slice.Clone(store.images)
	return CollectionSnapshot{
		Images:      images,
		Filtered:    Filter(images, store.query),
		SearchQuery: store.query,
		IsLoading:   store.loading,
		Err:         store.err,
	}
}

// mutate applies change to the collection and journals it while a load is
// in flight.
func (store *CollectionStore) mutate(change mutation) {
	store.mu.Lock()
	store.images = change(store.images)
	if store.loading {
		store.journal = append(store.journal, change)
	}
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.changes.Flush()
}

func (store *CollectionStore) clearErr() {
	store.mu.Lock()
	if store.err == nil {
		store.mu.Unlock()
		return
	}
	store.err = nil
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.changes.Flush()
}

func (store *CollectionStore) fail(ctx context.Context, err error, fallback string) error {
	surfaced := apperr.Surface(err, fallback)

	store.mu.Lock()
	store.err = surfaced
	store.changes.Post(store.snapshotLocked())
	store.mu.Unlock()

	store.logger.WarnContext(ctx, "images_operation_failed", slog.String("operation", fallback), slog.Any("error", err))
	store.changes.Flush()
	return surfaced
}

// insertFront puts img first, dropping any older entry with the same id.
func insertFront(collection []Image, img Image) []Image {
	rest := slice.Remove(collection, func(existing Image) bool { return existing.ID == img.ID })
	return slice.Prepend(rest, img)
}

// dedupe keeps the first occurrence of every id.
func dedupe(list []Image) []Image {
	seen := make(map[string]struct{}, len(list))
	return slice.Filter(list, func(img Image) bool {
		if _, ok := seen[img.ID]; ok {
			return false
		}
		seen[img.ID] = struct{}{}
		return true
	})
}
