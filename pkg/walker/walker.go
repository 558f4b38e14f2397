// Package walker lists the input files of a run.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FilterMode selects how a Filter treats its extensions.
type FilterMode string

const (
	// Whitelist keeps only files with a listed extension.
	Whitelist FilterMode = "whitelist"
	// Blacklist keeps every file except those with a listed extension.
	Blacklist FilterMode = "blacklist"
)

// Filter selects input files by extension.
type Filter struct {
	Mode       FilterMode `json:"mode"`
	Extensions []string   `json:"extensions"`
}

// ParseFilter builds a filter from a comma-separated extension list such as ".log,txt".
// A leading dot is added where missing and blank entries are ignored.
func ParseFilter(list string, mode string) (Filter, error) {
	f := Filter{Mode: FilterMode(strings.ToLower(strings.TrimSpace(mode)))}
	if f.Mode == "" {
		f.Mode = Blacklist
	}

	switch f.Mode {
	case Whitelist, Blacklist:
	default:
		return Filter{}, fmt.Errorf("unknown filter type %q (expected whitelist or blacklist)", mode)
	}

	for _, ext := range strings.Split(list, ",") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.Extensions = append(f.Extensions, ext)
	}

	if f.Mode == Whitelist && len(f.Extensions) == 0 {
		return Filter{}, fmt.Errorf("whitelist filter needs at least one extension")
	}

	return f, nil
}

// Extension returns the extension of the file at path. Leading dots of the base name
// do not start an extension, so ".bashrc" has none and ".tar.gz" has ".gz".
func Extension(path string) string {
	return filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
}

// Allows reports whether the file at path passes the filter.
func (f Filter) Allows(path string) bool {
	ext := Extension(path)

	listed := false
	for _, e := range f.Extensions {
		if e == ext {
			listed = true
			break
		}
	}

	if f.Mode == Whitelist {
		return listed
	}

	return !listed
}

// Walk returns every regular file under root that passes the filter, sorted by path.
func Walk(fs afero.Fs, root string, filter Filter) ([]string, error) {
	var paths []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if filter.Allows(info.Name()) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)

	return paths, nil
}
