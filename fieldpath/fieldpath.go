// Package fieldpath deals with dotted hierarchical field names such as
// "user.address.city".
//
// A path addresses a position inside a possibly nested document. Each path
// has a sequence of ancestor prefixes: for "a.b.c" these are "a", "a.b" and
// "a.b.c". The existence index records all of them so that a lookup of any
// ancestor finds documents that contain one of its descendants.
package fieldpath

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Separator delimits path segments
const Separator = '.'

// Errors returned by Validate
var (
	ErrEmptyPath    = errors.New("empty field path")
	ErrEmptySegment = errors.New("empty segment in field path")
)

// Validate checks that the path is non-empty and has no empty segments
func Validate(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == Separator {
			if i == start {
				return fmt.Errorf("%q: %w", path, ErrEmptySegment)
			}
			start = i + 1
		}
	}
	return nil
}

// Prefixes returns the ancestor prefixes of the path, shortest first,
// ending with the path itself.
//
// The prefixes are substrings of path, so nothing is allocated. Every range
// over the returned sequence starts from the beginning, and independent
// ranges over it do not share any state. An empty path yields nothing.
func Prefixes(path string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if path == "" {
			return
		}
		for end := nextEnd(path, 0); ; end = nextEnd(path, end+1) {
			if !yield(path[:end]) || end == len(path) {
				return
			}
		}
	}
}

func nextEnd(path string, from int) int {
	if i := strings.IndexByte(path[from:], Separator); i >= 0 {
		return from + i
	}
	return len(path)
}

// Segments returns the segments of the path in order
func Segments(path string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for prefix := range Prefixes(path) {
			if !yield(prefix[start:]) {
				return
			}
			start = len(prefix) + 1
		}
	}
}

// Depth returns the number of segments in the path
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, string(Separator)) + 1
}

// Join appends a child segment to a parent path. An empty parent denotes the
// document root.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + string(Separator) + child
}

// Parent returns the path without its last segment, or false for a
// single-segment path
func Parent(path string) (string, bool) {
	i := strings.LastIndexByte(path, Separator)
	if i < 0 {
		return "", false
	}
	return path[:i], true
}
