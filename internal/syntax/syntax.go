// Package syntax holds the source level primitives shared by the template
// scanner, the script lexer and the diagnostic remapper: byte spans over a
// document and the human (line/column) positions they translate to.
package syntax

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Span is a half open range [Start, End) of byte offsets into a document.
type Span struct {
	Start int `json:"start" toml:"start" yaml:"start"` // Byte offset of the first byte
	End   int `json:"end"   toml:"end"   yaml:"end"`   // Byte offset one past the last byte
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Position is an arbitrary source file position including file, line
// and column information. It can also express a range of source via StartCol
// and EndCol, this is useful for error reporting.
//
// Columns are counted in UTF-16 code units as that is what the linting host
// reports and expects back. Positions without filenames are considered invalid,
// in the case of stdin the string "stdin" may be used.
type Position struct {
	Name     string `json:"name"`     // Filename
	Offset   int    `json:"offset"`   // Byte offset of the position from the start of the file
	Line     int    `json:"line"`     // Line number (1 indexed)
	StartCol int    `json:"startCol"` // Start column (1 indexed)
	EndCol   int    `json:"endCol"`   // Column one past the end (1 indexed), EndCol == StartCol for an empty span
}

// IsValid reports whether the [Position] describes a valid source position.
//
// The rules are:
//
//   - At least Name, Line and StartCol must be set (and non zero)
//   - EndCol cannot be 0, it's only allowed values are StartCol or any number greater than StartCol
func (p Position) IsValid() bool {
	if p.Name == "" || p.Line < 1 || p.StartCol < 1 || p.EndCol < 1 ||
		(p.EndCol >= 1 && p.EndCol < p.StartCol) {
		return false
	}

	return true
}

// String returns a string representation of a [Position].
//
// It is formatted such that most text editors/terminals will be able to support clicking on it
// and navigating to the position.
//
// Depending on which fields are set, the string returned will be different:
//
//   - "file:line:start-end": valid position pointing to a range of text on the line
//   - "file:line:start": valid position pointing at a column on the line (EndCol == StartCol)
//
// At least Name, Line and StartCol must be present for a valid position, and Line and StarCol must be > 0.
// If not, an error string will be returned.
func (p Position) String() string {
	if !p.IsValid() {
		return fmt.Sprintf(
			"BadPosition: {Name: %q, Line: %d, StartCol: %d, EndCol: %d}",
			p.Name,
			p.Line,
			p.StartCol,
			p.EndCol,
		)
	}

	if p.StartCol == p.EndCol {
		return fmt.Sprintf("%s:%d:%d", p.Name, p.Line, p.StartCol)
	}

	return fmt.Sprintf("%s:%d:%d-%d", p.Name, p.Line, p.StartCol, p.EndCol)
}

// PositionOf translates a [Span] of src into a [Position] in the file called name.
//
// The span is expected to sit on a single line, EndCol is computed on the line
// the span starts on. A span beyond the end of src is clamped to it.
func PositionOf(name string, src []byte, span Span) Position {
	start := min(max(span.Start, 0), len(src))
	end := min(max(span.End, start), len(src))

	line := 1              // Line counter
	lastNewLineOffset := 0 // The byte offset of the (end of the) last newline seen

	for index, byt := range src[:start] {
		if byt == '\n' {
			lastNewLineOffset = index + 1 // +1 to account for len("\n")
			line++
		}
	}

	// +1 because editors columns start at 1
	startCol := 1 + utf16Len(src[lastNewLineOffset:start])
	endCol := startCol + utf16Len(src[start:end])

	return Position{
		Name:     name,
		Offset:   start,
		Line:     line,
		StartCol: startCol,
		EndCol:   endCol,
	}
}

// utf16Len returns the number of UTF-16 code units needed to encode text.
//
// Invalid utf8 counts as one unit per byte, the same as the replacement
// character it would decode to.
func utf16Len(text []byte) int {
	n := 0

	for len(text) > 0 {
		r, width := utf8.DecodeRune(text)
		text = text[width:]

		units := utf16.RuneLen(r)
		if units < 1 {
			units = 1
		}

		n += units
	}

	return n
}
