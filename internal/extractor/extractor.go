// Package extractor finds URL-shaped substrings in text streams of any size.
//
// Input is read in fixed-size windows so memory use does not depend on file size.
// A Stitcher joins the tail of each window with the next one, so a URL split by a
// window boundary is still reported exactly once.
package extractor

import (
	"errors"
	"fmt"
	"io"
)

// Scanner reads an input window by window and reports every URL-shaped match in order.
type Scanner struct {
	matcher   *Matcher
	chunkSize int
	maxCarry  int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxCarry bounds the bytes carried between windows.
func WithMaxCarry(n int) Option {
	return func(s *Scanner) {
		s.maxCarry = n
	}
}

// WithMatcher replaces the default URL matcher.
func WithMatcher(m *Matcher) Option {
	return func(s *Scanner) {
		s.matcher = m
	}
}

// NewScanner creates a scanner that reads windows of chunkSize bytes.
func NewScanner(chunkSize int, opts ...Option) (*Scanner, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	s := &Scanner{
		matcher:   NewMatcher(),
		chunkSize: chunkSize,
		maxCarry:  DefaultMaxCarry,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ChunkSize returns the window size in bytes.
func (s *Scanner) ChunkSize() int {
	return s.chunkSize
}

// Scan reads r until EOF and calls emit for each match, in input order. Matches still
// pending when the input ends are emitted after the last window.
func (s *Scanner) Scan(r io.Reader, emit func(Match)) (ScanStats, error) {
	var stats ScanStats

	stitcher := NewStitcher(s.matcher, s.maxCarry)
	window := make([]byte, s.chunkSize)

	for {
		n, err := io.ReadFull(r, window)
		if n > 0 {
			stats.Windows++
			stats.Bytes += int64(n)

			for _, m := range stitcher.Feed(window[:n]) {
				stats.Matches++
				emit(m)
			}
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read window %d: %w", stats.Windows+1, err)
		}
	}

	for _, m := range stitcher.Finish() {
		stats.Matches++
		emit(m)
	}
	stats.Stitched = stitcher.Stitched()

	return stats, nil
}

// ScanAll is Scan collecting the matches into a slice.
func (s *Scanner) ScanAll(r io.Reader) ([]Match, error) {
	var matches []Match

	_, err := s.Scan(r, func(m Match) {
		matches = append(matches, m)
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}
