// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify provides the publish/subscribe primitive the stores use to tell
consumers that their state changed.

A consumer registers a callback with [Broadcaster.Subscribe] and receives a
[Subscription]. Closing the subscription unregisters the callback; it is safe
to close more than once, which makes the usual pattern

	sub := store.Subscribe(render)
	defer sub.Close()

guarantee unregistration on every return path.

# Delivery

A store posts a snapshot with [Broadcaster.Post] while it still holds the lock
that ordered the change, then calls [Broadcaster.Flush] after releasing it.
Posted values reach callbacks one at a time in posting order: a flush that
finds another goroutine delivering leaves its values to that goroutine. A
callback therefore never sees an older snapshot after a newer one, and it may
call back into the store or close its own subscription.
*/
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans a value of type T out to every registered callback.
// The zero value is ready to use.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers []subscriber[T]

	queueMu    sync.Mutex
	pending    []T
	delivering bool
}

type subscriber[T any] struct {
	id string
	fn func(T)
}

// Subscription is the handle returned by [Broadcaster.Subscribe].
type Subscription struct {
	once   sync.Once
	cancel func()
	id     string
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string { return s.id }

// Close unregisters the callback. Subsequent calls are no-ops.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Subscribe registers fn and returns the handle that unregisters it.
func (b *Broadcaster[T]) Subscribe(fn func(T)) *Subscription {
	id := uuid.New().String()

	b.mu.Lock()
	b.subscribers = append(b.subscribers, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	return &Subscription{
		id:     id,
		cancel: func() { b.remove(id) },
	}
}

// Publish posts value and flushes.
func (b *Broadcaster[T]) Publish(value T) {
	b.Post(value)
	b.Flush()
}

// Post queues value for delivery without running any callback. It is cheap
// enough to call while holding the lock that orders the values.
func (b *Broadcaster[T]) Post(value T) {
	b.queueMu.Lock()
	b.pending = append(b.pending, value)
	b.queueMu.Unlock()
}

// Flush delivers every queued value in posting order, unless another
// goroutine is already delivering; that goroutine then delivers them too.
func (b *Broadcaster[T]) Flush() {
	b.queueMu.Lock()
	if b.delivering {
		b.queueMu.Unlock()
		return
	}
	b.delivering = true

	for len(b.pending) > 0 {
		value := b.pending[0]
		b.pending = b.pending[1:]
		b.queueMu.Unlock()

		b.deliver(value)

		b.queueMu.Lock()
	}

	b.delivering = false
	b.queueMu.Unlock()
}

// deliver runs every callback registered at the time of the call, in
// subscription order.
func (b *Broadcaster[T]) deliver(value T) {
	b.mu.RLock()
	targets := make([]subscriber[T], len(b.subscribers))
	copy(targets, b.subscribers)
	b.mu.RUnlock()

	for _, target := range targets {
		target.fn(value)
	}
}

// Len returns the number of registered callbacks.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Clear unregisters every callback. Used at teardown.
func (b *Broadcaster[T]) Clear() {
	b.mu.Lock()
	b.subscribers = nil
	b.mu.Unlock()
}

func (b *Broadcaster[T]) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s.id == id {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			return
		}
	}
}
