// Package sorter runs the scan: every input file is scanned for URLs, the matches are
// classified by domain and appended to one output file per domain group.
package sorter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding"

	"github.com/btraven00/urlsort/internal/classifier"
	"github.com/btraven00/urlsort/internal/extractor"
	"github.com/btraven00/urlsort/internal/sink"
	"github.com/btraven00/urlsort/pkg/domains"
	"github.com/btraven00/urlsort/pkg/walker"
)

// Summary describes a finished run.
type Summary struct {
	Files    int            `json:"files"`
	Bytes    int64          `json:"bytes"`
	Matches  int            `json:"matches"`
	Stitched int            `json:"stitched"`
	Groups   map[string]int `json:"groups"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// FileResult describes one processed file.
type FileResult struct {
	Path   string              `json:"path"`
	Stats  extractor.ScanStats `json:"stats"`
	Groups map[string]int      `json:"groups"`
}

// Sorter processes input files one at a time. It is not safe for concurrent use.
type Sorter struct {
	fs         afero.Fs
	config     Config
	registry   *domains.Registry
	scanner    *extractor.Scanner
	classifier *classifier.Classifier
	encoding   encoding.Encoding
	logger     *slog.Logger
}

// New validates config and prepares a sorter over registry.
func New(fs afero.Fs, config Config, registry *domains.Registry, logger *slog.Logger) (*Sorter, error) {
	if err := config.Validate(fs); err != nil {
		return nil, err
	}

	matcher := extractor.NewMatcher()
	scanner, err := extractor.NewScanner(config.ChunkSize, extractor.WithMatcher(matcher))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	enc, err := lookupEncoding(config.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("scanner ready", "chunk_size", scanner.ChunkSize(), "pattern", matcher.Pattern())

	return &Sorter{
		fs:       fs,
		config:   config,
		registry: registry,
		scanner:  scanner,
		classifier: classifier.New(registry, classifier.Options{
			UnescapeSlashes:    config.UnescapeSlashes,
			CollapseSubdomains: config.CollapseSubdomains,
		}),
		encoding: enc,
		logger:   logger,
	}, nil
}

// Inputs lists the input files in processing order.
func (s *Sorter) Inputs() ([]string, error) {
	filter, err := s.config.FileFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return walker.Walk(s.fs, s.config.InputDir, filter)
}

// Run processes paths in order. Each file is scanned completely and its matches are
// flushed before the next file is opened. The output files are closed on return,
// also when a file fails; the failing file contributes nothing to the output.
func (s *Sorter) Run(ctx context.Context, paths []string) (summary *Summary, err error) {
	start := time.Now()
	summary = &Summary{Groups: make(map[string]int)}

	s.logger.Debug("creating output directory", "path", s.config.OutputDir)
	if err := s.fs.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	out := sink.New(s.fs, s.config.OutputDir,
		sink.WithEncoding(outputEncoding(s.encoding)),
		sink.WithLogger(s.logger),
	)
	defer func() {
		err = multierr.Append(err, out.Close())
		summary.Elapsed = time.Since(start)
	}()

	acc := sink.NewAccumulator(s.registry.Groups(), out)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		s.logger.Debug("processing file", "file", path, "index", fmt.Sprintf("%d/%d", i+1, len(paths)))

		result, err := s.processFile(path, acc)
		if err != nil {
			acc.Discard()
			return summary, err
		}

		summary.Files++
		summary.Bytes += result.Stats.Bytes
		summary.Matches += result.Stats.Matches
		summary.Stitched += result.Stats.Stitched
		for group, n := range result.Groups {
			summary.Groups[group] += n
		}
	}

	return summary, nil
}

// processFile scans one file into acc and flushes it.
func (s *Sorter) processFile(path string, acc *sink.Accumulator) (*FileResult, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stats, err := s.scanner.Scan(decodingReader(f, s.encoding), func(m extractor.Match) {
		entry := s.classifier.Classify(m.Text)
		if entry.Group == domains.Unknown {
			s.logger.Debug("unlisted host", "file", path, "host", entry.Host)
		}
		acc.Record(entry.Group, entry.Text)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	groups, err := acc.FlushAll()
	if err != nil {
		return nil, fmt.Errorf("failed to write matches of %s: %w", path, err)
	}

	for _, group := range s.registry.Groups() {
		if n := groups[group]; n > 0 {
			s.logger.Debug("flushed group", "group", group, "count", n)
		}
	}

	return &FileResult{
		Path:   path,
		Stats:  stats,
		Groups: groups,
	}, nil
}
