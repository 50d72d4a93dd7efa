// Package scanner implements a lexical scanner for template documents, reading the raw
// source text and producing a stream of tokens for the binding parser.
//
// The scanner is a state-function based scanner similar to that described by
// Rob Pike in his talk [Lexical Scanning in Go], based on the implementation of [text/template].
//
// Unlike text/template, the state machine runs to completion synchronously when the
// scanner is constructed and tokens are handed out from a slice. Documents are small and
// the processing host calls in once per document, so there is nothing to overlap.
//
// Template documents are not a context-free grammar and are frequently malformed
// mid-edit, the scanner never fails: an interpolation or comment that is never closed
// is simply scanned as text.
//
// [Lexical Scanning in Go]: https://go.dev/talks/2011/lex.slide#1
package scanner

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"go.followtheprocess.codes/fruition/internal/syntax/token"
)

const (
	eof         = rune(-1) // eof signifies we have reached the end of the input.
	initialSize = 64       // initial capacity of the token slice
)

// Mode controls which interpolation syntaxes the scanner recognises.
type Mode uint8

const (
	// SingleBrace enables '{ key }' interpolation in addition to '{{ key }}'.
	SingleBrace Mode = 1 << iota
)

// stateFn represents the state of the scanner as a function that does the work
// associated with the current state, then returns the next state.
type stateFn func(*Scanner) stateFn

// Scanner is the template document scanner.
type Scanner struct {
	src    []byte        // Raw source text
	tokens []token.Token // Tokens produced by the state machine
	close  []byte        // Delimiter closing the interpolation currently being scanned
	start  int           // The start position of the current token
	pos    int           // Current scanner position in src (bytes, 0 indexed)
	read   int           // Index of the next token to hand out from Scan
	mode   Mode          // Recognised syntaxes
}

// New returns a new [Scanner] over src with all tokens already scanned.
func New(src []byte, mode Mode) *Scanner {
	s := &Scanner{
		src:    src,
		tokens: make([]token.Token, 0, initialSize),
		mode:   mode,
	}

	s.run()

	return s
}

// Scan returns the next token, once the input is exhausted it returns
// [token.EOF] forever.
func (s *Scanner) Scan() token.Token {
	if s.read >= len(s.tokens) {
		return token.Token{Kind: token.EOF, Start: len(s.src), End: len(s.src)}
	}

	tok := s.tokens[s.read]
	s.read++

	return tok
}

// Tokens returns every token in the document, terminated by [token.EOF].
func (s *Scanner) Tokens() []token.Token {
	return s.tokens
}

// run starts the state machine for the scanner, it runs with each [stateFn] returning the next
// state until one returns nil at the end of the input.
func (s *Scanner) run() {
	for state := scanText; state != nil; {
		state = state(s)
	}
}

// atEOF reports whether the scanner is at the end of the input.
func (s *Scanner) atEOF() bool {
	return s.pos >= len(s.src)
}

// next returns the next utf8 rune in the input or [eof], and advances
// the scanner over that rune.
func (s *Scanner) next() rune {
	if s.atEOF() {
		return eof
	}

	char, width := utf8.DecodeRune(s.src[s.pos:])
	s.pos += width

	return char
}

// peek returns the next utf8 rune in the input or [eof], but does not
// advance the scanner.
func (s *Scanner) peek() rune {
	if s.atEOF() {
		return eof
	}

	char, _ := utf8.DecodeRune(s.src[s.pos:])

	return char
}

// rest returns the rest of the input from the current scanner position,
// or nil if the scanner is at EOF.
func (s *Scanner) rest() []byte {
	if s.atEOF() {
		return nil
	}

	return s.src[s.pos:]
}

// restHasPrefix reports whether the remainder of the input begins with the
// provided run of characters.
func (s *Scanner) restHasPrefix(prefix string) bool {
	return bytes.HasPrefix(s.rest(), []byte(prefix))
}

// takeWhile consumes characters so long as the predicate returns true, stopping at the
// first one that returns false such that after it returns, [Scanner.next] returns the first 'false' rune.
func (s *Scanner) takeWhile(predicate func(r rune) bool) {
	for s.peek() != eof && predicate(s.peek()) {
		s.next()
	}
}

// advance moves the scanner forward n bytes.
func (s *Scanner) advance(n int) {
	s.pos = min(s.pos+n, len(s.src))
}

// emit appends a token of the given kind covering the text between start and pos.
func (s *Scanner) emit(kind token.Kind) {
	s.tokens = append(s.tokens, token.Token{
		Kind:  kind,
		Start: s.start,
		End:   s.pos,
	})

	s.start = s.pos
}

// emitText emits any pending text collected since the last token.
func (s *Scanner) emitText() {
	if s.pos > s.start {
		s.emit(token.Text)
	}
}

// scanText is the initial state of the scanner, it collects markup text up until the
// next comment, tag or interpolation.
func scanText(s *Scanner) stateFn {
	for {
		switch {
		case s.atEOF():
			s.emitText()
			s.emit(token.EOF)

			return nil
		case s.restHasPrefix("<!--"):
			s.emitText()
			return scanHTMLComment
		case s.restHasPrefix("<") && isTagStart(s.src, s.pos+1):
			s.emitText()
			return scanTag
		case s.restHasPrefix("{{"):
			if state := scanDoubleOpen(s); state != nil {
				return state
			}
		case s.mode&SingleBrace != 0 && s.restHasPrefix("{"):
			if state := scanSingleOpen(s); state != nil {
				return state
			}
		default:
			s.next()
		}
	}
}

// scanHTMLComment scans a '<!-- -->' comment, an unterminated comment runs
// to the end of the input as that is how browsers treat it.
func scanHTMLComment(s *Scanner) stateFn {
	end := bytes.Index(s.rest(), []byte("-->"))
	if end == -1 {
		s.pos = len(s.src)
	} else {
		s.advance(end + len("-->"))
	}

	s.emit(token.Comment)

	return scanText
}

// scanTag scans the name of an opening tag, the '<' has not yet been consumed.
//
// Script and style tags have their interiors skipped over as a single [token.Region]
// so nothing inside them is mistaken for markup or interpolation.
func scanTag(s *Scanner) stateFn {
	s.next() // '<'
	s.emitText()

	s.takeWhile(func(r rune) bool {
		return !unicode.IsSpace(r) && r != '/' && r != '>'
	})

	name := bytes.ToLower(s.src[s.start:s.pos])
	s.emit(token.Tag)

	if !bytes.Equal(name, []byte("script")) && !bytes.Equal(name, []byte("style")) {
		return scanText
	}

	closeAngle := bytes.IndexByte(s.rest(), '>')
	if closeAngle == -1 {
		return scanText
	}

	interior := s.pos + closeAngle + 1

	end := indexFold(s.src[interior:], append([]byte("</"), name...))
	if end == -1 {
		// No closing tag, not a region, just carry on as normal markup
		return scanText
	}

	s.pos = interior
	s.emitText()

	s.advance(end)
	s.emit(token.Region)

	return scanText
}

// scanDoubleOpen is called when the scanner sits on '{{'. It works out the flavour of
// interpolation and returns the state that scans it, or nil if the interpolation is
// never closed, in which case the '{{' has been consumed as plain text.
func scanDoubleOpen(s *Scanner) stateFn {
	if s.restHasPrefix("{{!") {
		closing := "}}"
		if s.restHasPrefix("{{!--") {
			closing = "--}}"
		}

		end := bytes.Index(s.rest()[len("{{!"):], []byte(closing))
		if end == -1 {
			s.advance(len("{{"))
			return nil
		}

		s.emitText()
		s.advance(len("{{!") + end + len(closing))
		s.emit(token.Comment)

		return scanText
	}

	kind := token.OpenInterp
	open := len("{{")
	closing := []byte("}}")

	switch {
	case s.restHasPrefix("{{{"):
		open = len("{{{")
		closing = []byte("}}}")
	case s.restHasPrefix("{{#"):
		kind = token.OpenSection
		open = len("{{#")
	case s.restHasPrefix("{{^"):
		kind = token.OpenInverted
		open = len("{{^")
	case s.restHasPrefix("{{/"):
		kind = token.OpenEnd
		open = len("{{/")
	}

	if bytes.Index(s.rest()[open:], closing) == -1 {
		s.advance(len("{{"))
		return nil
	}

	s.emitText()
	s.advance(open)
	s.emit(kind)
	s.close = closing

	return scanBody
}

// scanSingleOpen is called when the scanner sits on a lone '{' in single brace mode.
//
// Braces inside the expression are balanced so object literals don't end the
// interpolation early. Like [scanDoubleOpen] it returns nil having consumed the '{'
// as text if the interpolation is never closed.
func scanSingleOpen(s *Scanner) stateFn {
	depth := 0
	end := -1

	for i, char := range s.rest() {
		if char == '{' {
			depth++
			continue
		}

		if char == '}' {
			depth--
			if depth == 0 {
				end = i
				break
			}
		}
	}

	if end == -1 {
		s.advance(len("{"))
		return nil
	}

	s.emitText()
	s.advance(len("{"))
	s.emit(token.OpenInterp)

	// Nested braces mean the first '}' may not be ours, so the body is everything
	// up to the balanced closing brace
	s.advance(end - len("{"))
	s.emit(token.Body)
	s.advance(len("}"))
	s.emit(token.CloseInterp)

	return scanText
}

// scanBody scans the body of a double brace interpolation up to its closing delimiter,
// which is known to exist.
func scanBody(s *Scanner) stateFn {
	end := bytes.Index(s.rest(), s.close)
	s.advance(end)
	s.emit(token.Body)

	s.advance(len(s.close))
	s.emit(token.CloseInterp)

	return scanText
}

// isTagStart reports whether the byte at offset i of src can start a tag name.
func isTagStart(src []byte, i int) bool {
	if i >= len(src) {
		return false
	}

	char := src[i]

	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

// indexFold is [bytes.Index] but ASCII case insensitive.
func indexFold(s, sep []byte) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if bytes.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}

	return -1
}
