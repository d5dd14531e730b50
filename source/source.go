// Package source holds the source buffers that every later stage of the
// Atlas core addresses into: lexer tokens, AST nodes, bytecode instructions,
// and diagnostics all ultimately point back into a *source.File by way of a
// Span.
package source

import (
	"fmt"
	"sort"
)

// File holds the raw contents of one compilation unit plus the line-offset
// table needed to turn a byte offset into a (line, column) pair.
//
// A File is built incrementally by the lexer as it scans: AddLine is called
// each time a line terminator is consumed, so the table is complete by the
// time lexing finishes.
type File struct {
	name string
	data []byte
	// lines[i] is the byte offset at which line i+1 (1-based) begins.
	// lines[0] is always 0.
	lines []int
}

// New creates a File for the given name and contents. A UTF-8 byte-order
// mark at offset 0 is tolerated and stripped, per spec.md §6 "Source
// format".
func New(name string, contents []byte) *File {
	if len(contents) >= 3 && contents[0] == 0xEF && contents[1] == 0xBB && contents[2] == 0xBF {
		contents = contents[3:]
	}
	return &File{name: name, data: contents, lines: []int{0}}
}

// Name returns the file's display name, as supplied to New.
func (f *File) Name() string { return f.name }

// Data returns the raw file contents (post BOM-strip).
func (f *File) Data() []byte { return f.data }

// Len returns the number of bytes in the file.
func (f *File) Len() int { return len(f.data) }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in strictly increasing order; this is guaranteed because the
// lexer calls it exactly once per line terminator, in scan order.
func (f *File) AddLine(offset int) {
	if offset < 0 || offset > len(f.data) {
		panic(fmt.Sprintf("source: line offset %d out of range [0,%d]", offset, len(f.data)))
	}
	last := f.lines[len(f.lines)-1]
	if offset <= last {
		panic(fmt.Sprintf("source: line offset %d does not follow previous offset %d", offset, last))
	}
	f.lines = append(f.lines, offset)
}

// Position returns the 1-based line and column for a byte offset into the
// file. Column is counted in bytes, not runes, matching the span model in
// spec.md §3 ("byte-offset start/end ... plus a 1-based line and column").
func (f *File) Position(offset int) (line, column int) {
	idx := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset })
	line = idx // lines[idx-1] <= offset < lines[idx], so 1-based line is idx
	if line == 0 {
		line = 1
	}
	col := offset - f.lines[line-1] + 1
	return line, col
}

// Text returns the substring of the file covered by a span.
func (f *File) Text(s Span) string {
	if s.IsDummy() {
		return ""
	}
	return string(f.data[s.Start:s.End])
}

// LineText returns the full text of the given 1-based line, without its
// terminator, for use in diagnostic snippet rendering.
func (f *File) LineText(line int) string {
	if line < 1 || line > len(f.lines) {
		return ""
	}
	start := f.lines[line-1]
	end := len(f.data)
	if line < len(f.lines) {
		end = f.lines[line]
	}
	for end > start && (f.data[end-1] == '\n' || f.data[end-1] == '\r') {
		end--
	}
	return string(f.data[start:end])
}

// Span is a half-open byte range [Start, End) into a File, plus the 1-based
// line/column of Start, cached at construction time so diagnostic rendering
// never has to re-scan the file.
//
// Spans combine by taking the outer Start and End (see Join).
type Span struct {
	File          *File
	Start, End    int
	Line, Column  int
}

// Dummy is the sentinel span used for synthesized nodes that have no source
// location (e.g. an implicit narrowing type, a desugared node). It never
// indexes into a real file.
var Dummy = Span{}

// IsDummy reports whether s is the sentinel dummy span.
func (s Span) IsDummy() bool { return s.File == nil }

// Make builds a Span for [start,end) in f, resolving Line/Column from
// start via f.Position.
func Make(f *File, start, end int) Span {
	line, col := f.Position(start)
	return Span{File: f, Start: start, End: end, Line: line, Column: col}
}

// Join returns the smallest span covering both a and b. If either is the
// dummy span, the other is returned unchanged; joining two dummy spans
// yields the dummy span.
func Join(a, b Span) Span {
	if a.IsDummy() {
		return b
	}
	if b.IsDummy() {
		return a
	}
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	if start == a.Start {
		return Span{File: a.File, Start: start, End: end, Line: a.Line, Column: a.Column}
	}
	return Span{File: b.File, Start: start, End: end, Line: b.Line, Column: b.Column}
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// String renders "file:line:column" for use in human-readable diagnostics.
func (s Span) String() string {
	if s.IsDummy() {
		return "<synthetic>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File.Name(), s.Line, s.Column)
}
