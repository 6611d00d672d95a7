// Package output word-wraps story text to a fixed line width.
//
// Text is buffered until a line is complete. Complete lines are written
// immediately; the trailing partial line waits until the next call, or
// until Prompt forces it out. Runs of whitespace collapse to a single
// space, and a line break replaces the space before any word that would
// overflow the width.
package output

import (
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the line width used when none is configured.
const DefaultWidth = 72

// Formatter buffers and wraps text written to an underlying writer. It is
// not safe for concurrent use.
type Formatter struct {
	w     io.Writer
	width int
	buf   strings.Builder
	col   int
	err   error
}

// New creates a formatter writing to w. A width below one is replaced by
// DefaultWidth.
func New(w io.Writer, width int) *Formatter {
	if width < 1 {
		width = DefaultWidth
	}
	return &Formatter{w: w, width: width}
}

// Width returns the maximum line width.
func (f *Formatter) Width() int { return f.width }

// Column returns the column reached by the last word written.
func (f *Formatter) Column() int { return f.col }

// Pending returns the buffered partial line.
func (f *Formatter) Pending() string { return f.buf.String() }

// Err returns the first error from the underlying writer. Once a write
// fails, nothing more is written.
func (f *Formatter) Err() error { return f.err }

// Print appends s. Any lines it completes are written.
func (f *Formatter) Print(s string) {
	f.buf.WriteString(s)
	f.flush(false)
}

// Println appends s and ends the line.
func (f *Formatter) Println(s string) {
	f.buf.WriteString(s)
	f.Newline()
}

// Newline ends the current line.
func (f *Formatter) Newline() {
	f.buf.WriteByte('\n')
	f.flush(false)
}

// StartLine ends the current line if anything is buffered, so the next
// output starts at the left margin.
func (f *Formatter) StartLine() {
	if f.buf.Len() > 0 {
		f.Newline()
	}
}

// Prompt appends s and writes everything buffered, including the partial
// line, leaving the cursor after the prompt.
func (f *Formatter) Prompt(s string) {
	f.buf.WriteString(s)
	f.flush(true)
}

func (f *Formatter) flush(partial bool) {
	if f.buf.Len() == 0 {
		return
	}
	text := f.buf.String()
	f.buf.Reset()

	lines := strings.Split(text, "\n")
	last := len(lines) - 1

	var out strings.Builder
	for _, line := range lines[:last] {
		f.writeLine(&out, line, true)
	}
	if partial {
		f.writeLine(&out, lines[last], false)
	} else {
		f.buf.WriteString(lines[last])
	}
	f.write(out.String())
}

// writeLine formats one line. The column restarts at zero for every line.
func (f *Formatter) writeLine(out *strings.Builder, line string, complete bool) {
	col := 0
	if strings.TrimFunc(line, isSpace) == "" {
		if complete {
			out.WriteByte('\n')
			f.col = 0
		} else if line != "" {
			out.WriteByte(' ')
			f.col = 1
		}
		return
	}

	words := strings.FieldsFunc(line, isSpace)
	if r, _ := utf8.DecodeLastRuneInString(line); isSpace(r) {
		words = append(words, "")
	}
	sep := false
	for _, w := range words[:len(words)-1] {
		col = f.writeWord(out, w, col, sep)
		sep = true
	}
	if w := words[len(words)-1]; w != "" || !complete {
		col = f.writeWord(out, w, col, sep)
	}
	f.col = col
	if complete {
		out.WriteByte('\n')
		f.col = 0
	}
}

func (f *Formatter) writeWord(out *strings.Builder, w string, col int, sep bool) int {
	n := utf8.RuneCountInString(w)
	extra := 0
	if sep {
		extra = 1
	}
	if col+n+extra > f.width {
		out.WriteByte('\n')
		col = 0
	} else if sep {
		out.WriteByte(' ')
		col++
	}
	out.WriteString(w)
	return col + n
}

func (f *Formatter) write(s string) {
	if s == "" || f.err != nil {
		return
	}
	_, f.err = io.WriteString(f.w, s)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
