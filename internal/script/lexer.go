// Package script implements just enough of a JavaScript front end to answer the
// questions template processing needs answered: which names a script declares,
// exports and imports, where its reactive statements are, and where its comments are.
//
// It is deliberately not a parser. The lexer gets strings, template literals,
// comments and regular expressions right so nothing inside them is mistaken for
// code, everything else is a handful of parser actions over the token stream at
// the top level of the script.
package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.followtheprocess.codes/fruition/internal/syntax"
)

// TokenKind is the kind of a lexical token in a script.
type TokenKind int

const (
	Ident    TokenKind = iota // Ident
	Number                    // Number
	String                    // String
	Template                  // Template
	Regexp                    // Regexp
	Comment                   // Comment
	Punct                     // Punct
)

// String implements [fmt.Stringer] for a [TokenKind].
func (k TokenKind) String() string {
	switch k {
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Template:
		return "Template"
	case Regexp:
		return "Regexp"
	case Comment:
		return "Comment"
	case Punct:
		return "Punct"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexical token in a script.
type Token struct {
	Text          string      // The source text of the token
	Span          syntax.Span // Where it is in the script
	Kind          TokenKind   // The kind of token
	NewlineBefore bool        // Whether a line break separates this token from the previous one
}

// String implements [fmt.Stringer] for a [Token].
func (t Token) String() string {
	return fmt.Sprintf("<%s %q start=%d, end=%d>", t.Kind, t.Text, t.Span.Start, t.Span.End)
}

// Is reports whether the token is punctuation or an identifier spelled text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

// lexer holds the state of a single call to [Lex].
type lexer struct {
	src     string  // The script
	tokens  []Token // Tokens produced so far, including comments
	last    Token   // The last significant (non comment) token
	pos     int     // Current byte offset in src
	seen    bool    // Whether last is set
	newline bool    // Whether skipSpace crossed a line break
}

// Lex splits a script into tokens. Whitespace is discarded, comments are kept.
//
// Lex never fails, an unterminated string, comment or template literal runs to
// the end of its line or the end of the input.
func Lex(src string) []Token {
	l := &lexer{src: src}

	for {
		tok, ok := l.next()
		if !ok {
			return l.tokens
		}

		l.tokens = append(l.tokens, tok)
	}
}

// Code returns the tokens with comments removed. A line break inside or around
// a removed comment is carried over to the token that follows it.
func Code(tokens []Token) []Token {
	code := make([]Token, 0, len(tokens))
	pending := false

	for _, tok := range tokens {
		if tok.Kind == Comment {
			pending = pending || tok.NewlineBefore || strings.Contains(tok.Text, "\n")
			continue
		}

		if pending {
			tok.NewlineBefore = true
			pending = false
		}

		code = append(code, tok)
	}

	return code
}

// next scans the next token, ok is false at the end of the input.
func (l *lexer) next() (tok Token, ok bool) {
	l.skipSpace()

	if l.pos >= len(l.src) {
		return Token{}, false
	}

	newline := l.newline
	l.newline = false

	start := l.pos
	char := l.src[l.pos]

	var kind TokenKind

	switch {
	case strings.HasPrefix(l.src[l.pos:], "//"):
		l.lineComment()
		kind = Comment
	case strings.HasPrefix(l.src[l.pos:], "/*"):
		l.blockComment()
		kind = Comment
	case char == '"' || char == '\'':
		l.quoted(char)
		kind = String
	case char == '`':
		l.template()
		kind = Template
	case char == '/' && l.regexpAllowed():
		if l.regexp() {
			kind = Regexp
		} else {
			l.pos = start + 1
			kind = Punct
		}
	case char >= '0' && char <= '9', char == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		l.number()
		kind = Number
	case isIdentStart(l.peekRune()):
		l.ident()
		kind = Ident
	default:
		_, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width
		kind = Punct
	}

	tok = Token{
		Kind:          kind,
		Text:          l.src[start:l.pos],
		Span:          syntax.Span{Start: start, End: l.pos},
		NewlineBefore: newline,
	}

	if kind != Comment {
		l.last = tok
		l.seen = true
	}

	return tok, true
}

// skipSpace advances past any whitespace, noting any line breaks.
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		char, width := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(char) {
			return
		}

		if char == '\n' || char == '\u2028' || char == '\u2029' {
			l.newline = true
		}

		l.pos += width
	}
}

// peekRune returns the rune at the current position without consuming it.
func (l *lexer) peekRune() rune {
	char, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return char
}

// lineComment consumes a '//' comment up to but not including the newline.
func (l *lexer) lineComment() {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end == -1 {
		l.pos = len(l.src)
		return
	}

	l.pos += end
}

// blockComment consumes a '/* */' comment, unterminated runs to the end of input.
func (l *lexer) blockComment() {
	end := strings.Index(l.src[l.pos+len("/*"):], "*/")
	if end == -1 {
		l.pos = len(l.src)
		return
	}

	l.pos += len("/*") + end + len("*/")
}

// quoted consumes a string literal delimited by quote, an unterminated string
// stops at the end of the line.
func (l *lexer) quoted(quote byte) {
	l.pos++ // Opening quote

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return
		case '\n':
			return
		default:
			l.pos++
		}
	}

	l.pos = min(l.pos, len(l.src))
}

// template consumes a template literal including any '${ }' substitutions,
// which may themselves contain strings, comments and nested templates.
func (l *lexer) template() {
	l.pos++ // Opening backtick

	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '\\':
			l.pos += 2
		case l.src[l.pos] == '`':
			l.pos++
			return
		case strings.HasPrefix(l.src[l.pos:], "${"):
			l.pos += len("${")
			l.substitution()
		default:
			l.pos++
		}
	}

	l.pos = min(l.pos, len(l.src))
}

// substitution consumes the expression in a template substitution up to and
// including its closing brace.
func (l *lexer) substitution() {
	depth := 1

	for {
		tok, ok := l.next()
		if !ok {
			return
		}

		switch {
		case tok.Is("{"):
			depth++
		case tok.Is("}"):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// regexp consumes a regular expression literal and its flags, reporting false
// if it is not terminated on the same line.
func (l *lexer) regexp() bool {
	pos := l.pos + 1 // Opening slash
	class := false

	for pos < len(l.src) {
		switch char := l.src[pos]; {
		case char == '\\':
			pos += 2
		case char == '\n':
			return false
		case char == '[':
			class = true
			pos++
		case char == ']':
			class = false
			pos++
		case char == '/' && !class:
			pos++
			for pos < len(l.src) && isIdentByte(l.src[pos]) {
				pos++
			}

			l.pos = pos

			return true
		default:
			pos++
		}
	}

	return false
}

// regexpAllowed reports whether a '/' at the current position starts a regular
// expression rather than being a division, based on the previous token.
func (l *lexer) regexpAllowed() bool {
	if !l.seen {
		return true
	}

	switch l.last.Kind {
	case Number, String, Template, Regexp:
		return false
	case Ident:
		switch l.last.Text {
		case "return", "typeof", "case", "do", "else", "in", "of", "new", "delete",
			"void", "throw", "instanceof", "yield", "await":
			return true
		default:
			return false
		}
	default:
		return l.last.Text != ")" && l.last.Text != "]"
	}
}

// number consumes a numeric literal, loosely: any run of digits, letters, '_' and '.'.
func (l *lexer) number() {
	for l.pos < len(l.src) && (isIdentByte(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
}

// ident consumes an identifier.
func (l *lexer) ident() {
	for l.pos < len(l.src) {
		char, width := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(char) {
			return
		}

		l.pos += width
	}
}

// isIdentStart reports whether char may begin an identifier.
func isIdentStart(char rune) bool {
	return char == '$' || char == '_' || unicode.IsLetter(char)
}

// isIdentPart reports whether char may continue an identifier.
func isIdentPart(char rune) bool {
	return isIdentStart(char) || unicode.IsDigit(char) || char == '\u200c' || char == '\u200d'
}

// isIdentByte reports whether the ASCII char may continue an identifier.
func isIdentByte(char byte) bool {
	return char == '$' || char == '_' || isDigit(char) || (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

// isDigit reports whether char is an ASCII digit.
func isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}
