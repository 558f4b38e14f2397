package extractor

import "errors"

const (
	// DefaultChunkSize is the window size used when none is configured.
	DefaultChunkSize = 4096

	// DefaultMaxCarry bounds the bytes held back between windows. A possible
	// match that grows longer than this without ending is cut so that memory
	// stays bounded on inputs without separators.
	DefaultMaxCarry = 1 << 20
)

// ErrInvalidChunkSize is returned when the window size is not positive.
var ErrInvalidChunkSize = errors.New("chunk size must be greater than zero")

// Match is a URL-shaped substring and its byte span in the text it was found in.
type Match struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Len returns the length of the match in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// ScanStats summarizes the scan of one input.
type ScanStats struct {
	Windows  int   `json:"windows"`
	Bytes    int64 `json:"bytes"`
	Matches  int   `json:"matches"`
	Stitched int   `json:"stitched"`
}
