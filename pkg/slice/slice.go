// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice holds the copy-on-write helpers the profile histories rely on.

A profile snapshot handed to observers must never change underneath them, so
history edits always build a new backing array instead of appending or
deleting in place.
*/
package slice

// Map returns transform applied to each element. A nil input maps to nil.
func Map[T, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Append returns input followed by items in a fresh backing array.
func Append[T any](input []T, items ...T) []T {
	result := make([]T, 0, len(input)+len(items))
	result = append(result, input...)
	return append(result, items...)
}

// RemoveFirst returns a copy of input without the first element matching
// predicate. When nothing matches it returns input itself and false.
func RemoveFirst[T any](input []T, predicate func(T) bool) ([]T, bool) {
	for i, v := range input {
		if predicate(v) {
			result := make([]T, 0, len(input)-1)
			result = append(result, input[:i]...)
			return append(result, input[i+1:]...), true
		}
	}
	return input, false
}
