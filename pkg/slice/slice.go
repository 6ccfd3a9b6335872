// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with copy-on-write
helpers for collections that are handed out to readers.

None of these functions modify their input; each returns a fresh slice, so a
snapshot previously given to a subscriber never changes under its feet.
*/
package slice

// Filter returns the elements for which predicate is true, in order.
// A nil input yields nil.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	// Not pre-allocating to full length to avoid excessive memory on heavy filters
	result := []T{}
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// Prepend returns a new slice with item in front of input.
func Prepend[T any](input []T, item T) []T {
	result := make([]T, 0, len(input)+1)
	result = append(result, item)
	return append(result, input...)
}

// Remove returns input without the elements for which match is true,
// preserving the relative order of the rest.
func Remove[T any](input []T, match func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, v := range input {
		if !match(v) {
			result = append(result, v)
		}
	}
	return result
}

// IndexOf returns the index of the first element for which match is true, or -1.
func IndexOf[T any](input []T, match func(T) bool) int {
	for i, v := range input {
		if match(v) {
			return i
		}
	}
	return -1
}

// Clone returns a shallow copy of input. A nil input yields an empty slice.
func Clone[T any](input []T) []T {
	result := make([]T, len(input))
	copy(result, input)
	return result
}
