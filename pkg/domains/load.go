package domains

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrMalformedList is wrapped by every error caused by the content of a domain list.
var ErrMalformedList = errors.New("malformed domain list")

// Format is the encoding of a domain list file.
type Format string

const (
	FormatJSON  Format = "json"
	FormatLines Format = "lines"
)

// ErrorType classifies domain list errors.
type ErrorType string

const (
	ErrorTypeSyntax      ErrorType = "syntax"
	ErrorTypeInvalidName ErrorType = "invalid_name"
)

// ListError describes a domain list that could not be used.
type ListError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *ListError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ListError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedList, e.Err}
	}
	return []error{ErrMalformedList}
}

// FormatFor picks the list format from the file extension: ".json" files hold a
// JSON array of strings, anything else holds one domain per line.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatLines
}

// Load reads the domain list at path and builds a registry from it.
func Load(fs afero.Fs, path string) (*Registry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open domain list: %w", err)
	}
	defer f.Close()

	names, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read domain list '%s': %w", path, err)
	}

	return NewRegistry(names)
}

// Parse reads domain names from r in the given format.
func Parse(r io.Reader, format Format) ([]string, error) {
	switch format {
	case FormatJSON:
		return parseJSON(r)
	case FormatLines:
		return parseLines(r)
	default:
		return nil, fmt.Errorf("unsupported domain list format: %s", format)
	}
}

func parseJSON(r io.Reader) ([]string, error) {
	var names []string
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return nil, &ListError{
			Type:    ErrorTypeSyntax,
			Message: "domain list must be a JSON array of strings",
			Err:     err,
		}
	}

	return names, nil
}

func parseLines(r io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
