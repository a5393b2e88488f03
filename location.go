package cc

import (
	"fmt"
	"sort"
)

// FileID names a source file registered with a Session. File 0 is never
// issued; it is reserved for locations that have not been assigned a
// real file yet.
type FileID int32

// Range is a half-open byte span [Start, End) within one file's source
// text.
type Range struct {
	Start int
	End   int
}

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Str returns the substring of v covered by r.
func (r Range) Str(v []byte) string {
	return string(v[r.Start:r.End])
}

// Location is a source location: a file plus a byte span within it.
// Two locations only compare by span when their files match.
type Location struct {
	File  FileID
	Span  Range
}

func NewLocation(file FileID, span Range) Location {
	return Location{File: file, Span: span}
}

// SameFile reports whether two locations can be meaningfully compared.
func (l Location) SameFile(other Location) bool {
	return l.File == other.File
}

// LineCol is a 1-based line/column pair resolved from a byte offset.
type LineCol struct {
	Line   int
	Column int
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Column)
}

// Located pairs any payload with the location it was produced from.
type Located[T any] struct {
	Value T
	Loc   Location
}

func At[T any](v T, loc Location) Located[T] {
	return Located[T]{Value: v, Loc: loc}
}

// LineIndex maps byte offsets within one file's source to line/column
// pairs. Construction is O(n) over the input; lookups are O(log lines)
// via a binary search over cached line-start offsets. One LineIndex is
// built and cached per file on the Session.
type LineIndex struct {
	input     []byte
	lineStart []int
}

func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

func (li *LineIndex) LineCol(offset int) LineCol {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.input) {
		offset = len(li.input)
	}
	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > offset
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	lineStart := li.lineStart[lineIdx]
	return LineCol{Line: lineIdx + 1, Column: offset - lineStart + 1}
}

// FormatSpan renders a Range as "line:col" or "line:col..line:col" the
// way a diagnostic pretty-printer needs it.
func (li *LineIndex) FormatSpan(r Range) string {
	start := li.LineCol(r.Start)
	end := li.LineCol(r.End)
	if start == end {
		return start.String()
	}
	if start.Line == end.Line {
		return fmt.Sprintf("%d:%d..%d", start.Line, start.Column, end.Column)
	}
	return fmt.Sprintf("%s..%s", start.String(), end.String())
}

// Caret renders the source line(s) covered by r with a run of '^' under
// the span, when start and end land on the same line. Used by the
// diagnostic pretty-printer.
func (li *LineIndex) Caret(r Range) (line string, caret string, ok bool) {
	start := li.LineCol(r.Start)
	end := li.LineCol(r.End)
	if start.Line != end.Line {
		return "", "", false
	}
	lineStart := li.lineStart[start.Line-1]
	lineEnd := len(li.input)
	if start.Line < len(li.lineStart) {
		lineEnd = li.lineStart[start.Line] - 1
	}
	if lineEnd < lineStart {
		lineEnd = lineStart
	}
	text := string(li.input[lineStart:lineEnd])
	width := end.Column - start.Column
	if width < 1 {
		width = 1
	}
	pad := make([]byte, start.Column-1)
	for i := range pad {
		pad[i] = ' '
	}
	carets := make([]byte, width)
	for i := range carets {
		carets[i] = '^'
	}
	return text, string(pad) + string(carets), true
}
