package extractor

// Stitcher carries the tail of one window into the next so that a match split by a
// window boundary is reassembled before it is emitted.
//
// Only the final run of match characters can take part in a match that the next
// window extends. Within that run the carry starts at the first offset where a match
// could still be open, that is where a scheme or "www." begins or is cut off by the
// end of the text. Matches from there on are provisional and are rescanned with the
// next window; matches that end earlier are final. The rest of the run is dropped, so
// long runs without URLs are not carried. The result is the same sequence of matches
// a single scan of the whole input would produce.
type Stitcher struct {
	matcher  *Matcher
	carry    []byte
	maxCarry int
	stitched int
}

// NewStitcher creates a stitcher with an empty carry. maxCarry <= 0 selects DefaultMaxCarry.
func NewStitcher(matcher *Matcher, maxCarry int) *Stitcher {
	if maxCarry <= 0 {
		maxCarry = DefaultMaxCarry
	}

	return &Stitcher{
		matcher:  matcher,
		maxCarry: maxCarry,
	}
}

// Feed scans the carry joined with window and returns the matches that are final.
// window is not retained and may be reused by the caller.
func (s *Stitcher) Feed(window []byte) []Match {
	text := window
	carried := len(s.carry)
	if carried > 0 {
		text = make([]byte, 0, carried+len(window))
		text = append(text, s.carry...)
		text = append(text, window...)
	}

	matches := s.matcher.FindAll(text)

	cut := openMatchStart(text, trailingRunStart(text))
	if len(text)-cut > s.maxCarry {
		cut = s.boundedCut(text, matches)
	}

	final := matches[:0]
	for _, m := range matches {
		if m.Start >= cut || m.End > cut {
			break
		}
		if m.Start < carried && m.End > carried {
			s.stitched++
		}
		final = append(final, m)
	}

	s.keep(text[cut:])

	return final
}

// Finish returns the matches still held in the carry and empties it. It is called
// once the input is exhausted, when nothing can extend them any more.
func (s *Stitcher) Finish() []Match {
	if len(s.carry) == 0 {
		return nil
	}

	matches := s.matcher.FindAll(s.carry)
	s.carry = nil

	return matches
}

// Carry returns the bytes currently held back.
func (s *Stitcher) Carry() []byte {
	return s.carry
}

// Stitched returns how many emitted matches spanned a window boundary.
func (s *Stitcher) Stitched() int {
	return s.stitched
}

// boundedCut picks a cut point that keeps at most maxCarry bytes. A match straddling
// the limit is kept whole when it has already ended; a match still running into the
// end of text is emitted as it stands.
func (s *Stitcher) boundedCut(text []byte, matches []Match) int {
	limit := len(text) - s.maxCarry
	for _, m := range matches {
		if m.End <= limit {
			continue
		}
		if m.Start >= limit {
			break
		}
		if m.End == len(text) {
			return len(text)
		}

		return m.Start
	}

	return limit
}

func (s *Stitcher) keep(tail []byte) {
	if len(tail) == 0 {
		s.carry = nil
		return
	}

	carry := make([]byte, len(tail))
	copy(carry, tail)
	s.carry = carry
}
