package diff

import (
	"fmt"
	"strings"
)

// Line is one source line: its starting byte offset, its text without the
// line terminator, and the offset of the following line.
type Line struct {
	Offset int
	Text   string
	Next   int
}

// LineIndex computes line offsets of a source text on demand. Lines are
// scanned forward only and every scanned line is cached, so lookups in
// increasing order never rescan and earlier lines are served from cache.
type LineIndex struct {
	src   string
	pos   int
	lines []Line
}

// NewLineIndex wraps src. Nothing is scanned until the first lookup.
func NewLineIndex(src string) *LineIndex {
	return &LineIndex{src: src}
}

// Get returns line n (1-based).
func (x *LineIndex) Get(n int) (Line, error) {
	if n < 1 {
		return Line{}, fmt.Errorf("%w: line %d", ErrLineIndexExhausted, n)
	}
	for len(x.lines) < n {
		if !x.advance() {
			return Line{}, fmt.Errorf("%w: line %d requested, source has %d lines", ErrLineIndexExhausted, n, len(x.lines))
		}
	}
	return x.lines[n-1], nil
}

// Scanned reports how many lines have been cached so far.
func (x *LineIndex) Scanned() int {
	return len(x.lines)
}

func (x *LineIndex) advance() bool {
	if x.pos >= len(x.src) {
		return false
	}
	start := x.pos
	end := len(x.src)
	next := end
	if i := strings.IndexByte(x.src[start:], '\n'); i >= 0 {
		end = start + i
		next = end + 1
	}
	text := strings.TrimSuffix(x.src[start:end], "\r")
	x.lines = append(x.lines, Line{Offset: start, Text: text, Next: next})
	x.pos = next
	return true
}
