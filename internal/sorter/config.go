package sorter

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/btraven00/urlsort/internal/extractor"
	"github.com/btraven00/urlsort/pkg/walker"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of one run.
type Config struct {
	InputDir           string `mapstructure:"input" json:"input"`
	OutputDir          string `mapstructure:"output" json:"output"`
	DomainsFile        string `mapstructure:"domains" json:"domains"`
	Encoding           string `mapstructure:"encoding" json:"encoding"`
	Filter             string `mapstructure:"filter" json:"filter"`
	FilterType         string `mapstructure:"filter-type" json:"filter_type"`
	ChunkSize          int    `mapstructure:"chunks" json:"chunks"`
	UnescapeSlashes    bool   `mapstructure:"unescape-slashes" json:"unescape_slashes"`
	CollapseSubdomains bool   `mapstructure:"collapse-subdomains" json:"collapse_subdomains"`
	Verbose            int    `mapstructure:"verbose" json:"verbose"`
	Quiet              bool   `mapstructure:"quiet" json:"quiet"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		InputDir:           "input",
		OutputDir:          "output",
		DomainsFile:        "domains.txt",
		Encoding:           "utf-8",
		Filter:             "",
		FilterType:         string(walker.Blacklist),
		ChunkSize:          extractor.DefaultChunkSize,
		UnescapeSlashes:    true,
		CollapseSubdomains: false,
	}
}

// Validate checks the settings that can be checked before any file is read.
func (c Config) Validate(fs afero.Fs) error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be greater than zero, got %d", ErrInvalidConfig, c.ChunkSize)
	}

	if _, err := lookupEncoding(c.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := c.FileFilter(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	info, err := fs.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("%w: input directory: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: input path %s is not a directory", ErrInvalidConfig, c.InputDir)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory must be set", ErrInvalidConfig)
	}

	return nil
}

// FileFilter returns the input file filter.
func (c Config) FileFilter() (walker.Filter, error) {
	return walker.ParseFilter(c.Filter, c.FilterType)
}
