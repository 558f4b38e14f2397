package sink

import (
	"go.uber.org/multierr"
)

// Accumulator buffers matches per group while one input file is scanned. FlushAll
// writes and clears every buffer, so memory is bounded by the matches of a single
// file rather than by the whole corpus.
type Accumulator struct {
	buffers map[string][]string
	order   []string
	writer  LineWriter
	pending int
}

// NewAccumulator creates empty buffers for groups, flushed in the given order.
func NewAccumulator(groups []string, writer LineWriter) *Accumulator {
	a := &Accumulator{
		buffers: make(map[string][]string, len(groups)),
		order:   make([]string, 0, len(groups)),
		writer:  writer,
	}
	for _, group := range groups {
		a.addGroup(group)
	}

	return a
}

// Record appends text to the buffer of group. Groups not known yet are added
// after the initial ones.
func (a *Accumulator) Record(group, text string) {
	if _, ok := a.buffers[group]; !ok {
		a.addGroup(group)
	}
	a.buffers[group] = append(a.buffers[group], text)
	a.pending++
}

// Pending returns the number of buffered matches.
func (a *Accumulator) Pending() int {
	return a.pending
}

// Buffered returns the number of buffered matches of group.
func (a *Accumulator) Buffered(group string) int {
	return len(a.buffers[group])
}

// FlushAll writes every non-empty buffer in group order, flushes the writer and
// clears all buffers. It returns the number of lines flushed per group. Buffers are
// cleared even when a write fails; the failures are combined into the returned error.
func (a *Accumulator) FlushAll() (map[string]int, error) {
	counts := make(map[string]int)

	var err error
	for _, group := range a.order {
		lines := a.buffers[group]
		if len(lines) == 0 {
			continue
		}

		if werr := a.writer.WriteLines(group, lines); werr != nil {
			err = multierr.Append(err, werr)
		} else {
			counts[group] = len(lines)
		}
	}
	a.Discard()

	if len(counts) > 0 {
		err = multierr.Append(err, a.writer.Flush())
	}

	return counts, err
}

// Discard clears every buffer without writing it.
func (a *Accumulator) Discard() {
	for group := range a.buffers {
		a.buffers[group] = nil
	}
	a.pending = 0
}

func (a *Accumulator) addGroup(group string) {
	a.buffers[group] = nil
	a.order = append(a.order, group)
}
