package console

import (
	"io"
	"strings"
)

// Writer enforces the filtering invariant on a raw output stream. It wraps
// the real sink instead of patching anything global; the caller decides where
// the wrapped writer is installed.
//
// A chunk with no matching line is forwarded byte-for-byte in a single write.
// Otherwise the chunk is split into lines and each line is passed, rewritten
// or dropped individually. Suppressed content still reports success so the
// call site never sees the filtering happen.
type Writer struct {
	out    io.Writer
	filter *Filter
}

func NewWriter(out io.Writer, filter *Filter) *Writer {
	if filter == nil {
		filter = NewFilter()
	}
	return &Writer{out: out, filter: filter}
}

func (w *Writer) Write(p []byte) (int, error) {
	text := string(p)
	if _, matched := w.filter.matcher.Match(text); !matched {
		return w.out.Write(p)
	}

	trailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		switch decision, repl, _ := w.filter.Classify(line); decision {
		case Pass:
			kept = append(kept, line)
		case Rewrite:
			kept = append(kept, repl)
		case Suppress:
		}
	}
	if len(kept) == 0 {
		// Whole chunk was noise. Report it written.
		return len(p), nil
	}

	out := strings.Join(kept, "\n")
	if trailingNewline {
		out += "\n"
	}
	if _, err := w.out.Write([]byte(out)); err != nil {
		return 0, err
	}
	return len(p), nil
}
