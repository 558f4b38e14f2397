// Package sink buffers classified matches per domain group and appends them to one
// output file per group.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/spf13/afero"
)

// FileExtension is appended to a group name to form its output file name.
const FileExtension = ".txt"

// LineWriter appends lines to the output of a group. Flush pushes everything
// written so far to the underlying files.
type LineWriter interface {
	WriteLines(group string, lines []string) error
	Flush() error
}

// handle is an open output file. Writes go through an optional encoder and a buffer.
type handle struct {
	file    afero.File
	encoder io.WriteCloser
	buf     *bufio.Writer
}

func (h *handle) close() error {
	err := h.buf.Flush()
	if h.encoder != nil {
		err = multierr.Append(err, h.encoder.Close())
	}
	err = multierr.Append(err, h.file.Sync())

	return multierr.Append(err, h.file.Close())
}

// Sink owns one append-only output file per group. A file is opened the first time
// its group is written and stays open until Close.
type Sink struct {
	fs       afero.Fs
	dir      string
	encoding encoding.Encoding
	handles  map[string]*handle
	logger   *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithEncoding encodes output lines from UTF-8 into enc.
func WithEncoding(enc encoding.Encoding) Option {
	return func(s *Sink) {
		s.encoding = enc
	}
}

// WithLogger sets the logger used to report opened files.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New creates a sink writing into dir.
func New(fs afero.Fs, dir string, opts ...Option) *Sink {
	s := &Sink{
		fs:      fs,
		dir:     dir,
		handles: make(map[string]*handle),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the output file path of group.
func (s *Sink) Path(group string) string {
	return filepath.Join(s.dir, group+FileExtension)
}

// WriteLines appends each line, newline terminated, to the output file of group.
func (s *Sink) WriteLines(group string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	h, err := s.open(group)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if _, err := h.buf.WriteString(line); err != nil {
			return fmt.Errorf("failed to write to %s: %w", s.Path(group), err)
		}
		if err := h.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write to %s: %w", s.Path(group), err)
		}
	}

	return nil
}

// Flush writes the buffered lines of every open file through to the file.
func (s *Sink) Flush() error {
	var err error
	for group, h := range s.handles {
		if ferr := h.buf.Flush(); ferr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to flush %s: %w", s.Path(group), ferr))
		}
	}

	return err
}

// Open reports whether the output file of group has been opened.
func (s *Sink) Open(group string) bool {
	_, ok := s.handles[group]
	return ok
}

// Close flushes and closes every open file. All files are closed even when some fail.
func (s *Sink) Close() error {
	var err error
	for group, h := range s.handles {
		if cerr := h.close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close %s: %w", s.Path(group), cerr))
		}
		delete(s.handles, group)
	}

	return err
}

func (s *Sink) open(group string) (*handle, error) {
	if h, ok := s.handles[group]; ok {
		return h, nil
	}

	path := s.Path(group)
	s.logger.Debug("opening output file", "group", group, "path", path)

	file, err := s.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	h := &handle{file: file}

	var w io.Writer = file
	if s.encoding != nil {
		h.encoder = transform.NewWriter(file, s.encoding.NewEncoder())
		w = h.encoder
	}
	h.buf = bufio.NewWriter(w)

	s.handles[group] = h

	return h, nil
}
