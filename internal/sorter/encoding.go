package sorter

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const utf8Name = "utf-8"

// lookupEncoding resolves an encoding label such as "utf-8", "latin1" or "shift_jis".
func lookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.TrimSpace(name)
	if label == "" {
		label = utf8Name
	}

	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	return enc, nil
}

func isUTF8(enc encoding.Encoding) bool {
	name, err := htmlindex.Name(enc)
	return err == nil && name == utf8Name
}

// decodingReader converts r from enc into UTF-8. UTF-8 input is validated instead,
// so invalid bytes surface as a read error.
func decodingReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if isUTF8(enc) {
		return transform.NewReader(r, encoding.UTF8Validator)
	}

	return transform.NewReader(r, enc.NewDecoder())
}

// outputEncoding returns the encoding for output files, nil when no conversion is needed.
func outputEncoding(enc encoding.Encoding) encoding.Encoding {
	if isUTF8(enc) {
		return nil
	}

	return enc
}
