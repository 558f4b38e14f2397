package extractor

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// URL pattern pieces:
//   - scheme: http or https followed by "://", where either slash may be written as `\/`,
//     or a bare "www." prefix
//   - host: letters, digits, underscores and dots
//   - optional port of 1 to 5 digits
//   - one or more path segments, each starting with "/" or `\/`
const urlExpr = `(?:https?:\\?/\\?/|www\.)` +
	`[\pL\pN_.]+` +
	`(?::\d{1,5})?` +
	`(?:\\?/[\pL\pN_=#&\-?.:/!%@~]+)+`

// pathPunct lists the non-alphanumeric characters that can appear anywhere in a match.
const pathPunct = `=#&-?.:/!%@_~\`

var urlRegex = regexp.MustCompile(urlExpr)

// matchOpeners are the literal starts a match can have. Slashes of the scheme
// separator may be escaped independently.
var matchOpeners = [][]byte{
	[]byte("www."),
	[]byte("http://"),
	[]byte(`http:\//`),
	[]byte(`http:/\/`),
	[]byte(`http:\/\/`),
	[]byte("https://"),
	[]byte(`https:\//`),
	[]byte(`https:/\/`),
	[]byte(`https:\/\/`),
}

// Matcher finds URL-shaped substrings in a window of text.
type Matcher struct {
	regex *regexp.Regexp
}

// NewMatcher creates a matcher for the URL pattern.
func NewMatcher() *Matcher {
	return &Matcher{regex: urlRegex}
}

// FindAll returns every non-overlapping match in text, leftmost first.
func (m *Matcher) FindAll(text []byte) []Match {
	spans := m.regex.FindAllIndex(text, -1)
	if len(spans) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(spans))
	for _, span := range spans {
		matches = append(matches, Match{
			Text:  string(text[span[0]:span[1]]),
			Start: span[0],
			End:   span[1],
		})
	}

	return matches
}

// FindAllString is FindAll for a string input.
func (m *Matcher) FindAllString(text string) []Match {
	return m.FindAll([]byte(text))
}

// Pattern returns the regular expression source.
func (m *Matcher) Pattern() string {
	return m.regex.String()
}

// isMatchRune reports whether r can be part of a match. Bytes that do not decode
// count as match runes so a rune split across two windows stays in the carry.
func isMatchRune(r rune) bool {
	if r == utf8.RuneError {
		return true
	}

	return unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(pathPunct, r)
}

// trailingRunStart returns the offset where the final run of match runes in text begins.
// Every match is a contiguous run of such runes, so no match that ends inside the run can
// be final until the run itself is terminated.
func trailingRunStart(text []byte) int {
	end := len(text)
	for end > 0 {
		r, size := utf8.DecodeLastRune(text[:end])
		if !isMatchRune(r) {
			break
		}
		end -= size
	}

	return end
}

// openMatchStart returns the first offset at or after from where a match could still
// be in progress at the end of text: the text from there on either is a prefix of a
// match opener or starts with a complete one. It returns len(text) when there is none.
func openMatchStart(text []byte, from int) int {
	for i := from; i < len(text); i++ {
		j := bytes.IndexAny(text[i:], "hw")
		if j < 0 {
			break
		}
		i += j

		if couldOpenMatch(text[i:]) {
			return i
		}
	}

	return len(text)
}

func couldOpenMatch(s []byte) bool {
	for _, opener := range matchOpeners {
		if bytes.HasPrefix(s, opener) || bytes.HasPrefix(opener, s) {
			return true
		}
	}

	return false
}
