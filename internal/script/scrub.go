package script

import (
	"slices"
	"strings"
)

// directives are the words that mark a comment as a linter directive when they open
// its body.
var directives = [...]string{
	"eslint",
	"eslint-disable",
	"eslint-enable",
	"eslint-disable-line",
	"eslint-disable-next-line",
	"global",
	"globals",
}

// Scrub blanks out the comments of a script so nothing in them can be mistaken for
// a declaration. Every byte of a removed comment is replaced with a space except line
// breaks, so offsets, line numbers and columns all survive.
//
// Linter directives such as '/* global x */' or '// eslint-disable-line' are kept
// exactly as they are, as is any comment sharing a line with a closing tag
// fragment ('</').
func Scrub(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	last := 0

	for _, tok := range Lex(src) {
		if tok.Kind != Comment || directive(tok.Text) || keep(src, tok.Span.Start, tok.Span.End) {
			continue
		}

		out.WriteString(src[last:tok.Span.Start])

		for _, char := range []byte(tok.Text) {
			if char == '\n' || char == '\r' {
				out.WriteByte(char)
			} else {
				out.WriteByte(' ')
			}
		}

		last = tok.Span.End
	}

	out.WriteString(src[last:])

	return out.String()
}

// keep reports whether the comment between start and end must be kept because a
// line it touches holds a closing tag fragment.
func keep(src string, start, end int) bool {
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1

	lineEnd := len(src)
	if i := strings.IndexByte(src[end:], '\n'); i != -1 {
		lineEnd = end + i
	}

	return strings.Contains(src[lineStart:lineEnd], "</")
}

// directive reports whether comment is a linter directive, i.e. the first word of
// its body is one of the directive words.
func directive(comment string) bool {
	body, ok := strings.CutPrefix(comment, "//")
	if !ok {
		body = strings.TrimPrefix(comment, "/*")
		body = strings.TrimSuffix(body, "*/")
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return false
	}

	return slices.Contains(directives[:], fields[0])
}
