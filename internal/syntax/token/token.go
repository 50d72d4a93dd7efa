// Package token provides the set of lexical tokens for a template document.
package token

import (
	"fmt"
	"slices"
)

// Kind is the kind of a token.
type Kind int

//go:generate stringer -type Kind -linecomment
const (
	EOF          Kind = iota // EOF
	Text                     // Text
	Comment                  // Comment
	Region                   // Region
	Tag                      // Tag
	OpenInterp               // OpenInterp
	OpenSection              // OpenSection
	OpenInverted             // OpenInverted
	OpenEnd                  // OpenEnd
	Body                     // Body
	CloseInterp              // CloseInterp
)

// IsSection reports whether the kind opens a section, plain or inverted.
func (k Kind) IsSection() bool {
	return k == OpenSection || k == OpenInverted
}

// Token is a lexical token in a template document.
type Token struct {
	Kind  Kind // The kind of token this is
	Start int  // Byte offset from the start of the file to the start of this token
	End   int  // Byte offset from the start of the file to the end of this token
}

// String implement [fmt.Stringer] for a [Token].
func (t Token) String() string {
	return fmt.Sprintf("<Token::%s start=%d, end=%d>", t.Kind, t.Start, t.End)
}

// Is reports whether the token is any of the provided [Kind]s.
func (t Token) Is(kinds ...Kind) bool {
	return slices.Contains(kinds, t.Kind)
}

// IsOpen reports whether the token opens an interpolation of any flavour.
func (t Token) IsOpen() bool {
	return t.Is(OpenInterp, OpenSection, OpenInverted, OpenEnd)
}

// Reserved reports whether text is a template control word that never names
// a binding, e.g. the 'if' in '{#if ready}' or the 'else' in '{{else}}'.
func Reserved(text string) bool {
	switch text {
	case "if", "else", "each", "await", "then", "catch", "as",
		"html", "debug", "this", "true", "false", "null", "undefined":
		return true
	default:
		return false
	}
}

// Keyword reports whether text is a script reserved word that can never be declared
// with let, e.g. the 'new' in '{new Date()}' or the 'typeof' in '{typeof x}'.
//
// 'default' and 'class' are left out, whether they bind is up to the dialect.
func Keyword(text string) bool {
	switch text {
	case "break", "case", "catch", "const", "continue", "debugger", "delete", "do",
		"else", "enum", "export", "extends", "finally", "for", "function", "if", "import",
		"in", "instanceof", "new", "return", "super", "switch", "this", "throw", "try",
		"typeof", "var", "void", "while", "with", "yield", "let", "static", "await",
		"null", "true", "false":
		return true
	default:
		return false
	}
}
