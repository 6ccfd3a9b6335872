// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package result provides a three-way outcome type for operations whose failure
is sometimes routine.

A plain (T, error) pair forces callers to treat "not logged in" the same way
as "network down". [Result] separates them:

  - Ok: the operation produced a value.
  - Expected: the operation did not produce a value, for a reason the caller
    should treat as a normal state (e.g. the server answered 401).
  - Failed: the operation did not produce a value because something broke.

Both non-Ok variants carry a reason; only Failed reports it through [Result.Err].
*/
package result

type kind uint8

const (
	kindOk kind = iota
	kindExpected
	kindFailed
)

// Result is the outcome of an operation returning T.
type Result[T any] struct {
	value  T
	reason error
	kind   kind
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, kind: kindOk}
}

// Expected records a routine absence of value.
func Expected[T any](reason error) Result[T] {
	return Result[T]{reason: reason, kind: kindExpected}
}

// Failed records a genuine failure.
func Failed[T any](err error) Result[T] {
	return Result[T]{reason: err, kind: kindFailed}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.kind == kindOk }

// IsExpected reports whether the result is a routine non-value outcome.
func (r Result[T]) IsExpected() bool { return r.kind == kindExpected }

// IsFailed reports whether the result is a failure.
func (r Result[T]) IsFailed() bool { return r.kind == kindFailed }

// Value returns the value and whether it is present.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == kindOk
}

// Err returns the failure, or nil for Ok and Expected results.
func (r Result[T]) Err() error {
	if r.kind == kindFailed {
		return r.reason
	}
	return nil
}

// Reason returns why no value is present, for both Expected and Failed results.
func (r Result[T]) Reason() error {
	return r.reason
}

// Unwrap converts the result back to the conventional (T, error) pair.
// Expected results report their reason as the error.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.reason
}
