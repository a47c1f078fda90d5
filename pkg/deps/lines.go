package deps

import (
	"bufio"
	"io"
	"iter"
)

// LineScanner yields the logical lines of a text manifest one at a time.
// Line terminators ("\n" or "\r\n") are stripped; whitespace is not.
type LineScanner struct {
	sc  *bufio.Scanner
	err error
}

// Lines returns a LineScanner reading from r.
func Lines(r io.Reader) *LineScanner {
	return &LineScanner{sc: bufio.NewScanner(r)}
}

// All returns a lazy sequence of (1-based line number, line) pairs.
// Iteration stops at end of stream or on the first read error; check Err
// afterwards.
func (l *LineScanner) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		n := 0
		for l.sc.Scan() {
			n++
			if !yield(n, l.sc.Text()) {
				return
			}
		}
		l.err = l.sc.Err()
	}
}

// Err returns the first non-EOF error encountered while reading.
func (l *LineScanner) Err() error {
	return l.err
}
