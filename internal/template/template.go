// Package template discovers what a template document refers to: the names of the tags
// it opens and the bindings its interpolations read.
//
// Bindings come in two flavours. Simple interpolations like '{{ user.name }}' bind
// the first path segment ('user'). Sections like '{{#items}}...{{/items}}' and their
// inverted form '{{^items}}...{{/items}}' bind their key and open a new scope, anything
// referenced inside a section is recorded with that section as its parent and is never
// considered a root binding.
package template

import (
	"slices"
	"strings"

	"go.followtheprocess.codes/fruition/internal/syntax"
	"go.followtheprocess.codes/fruition/internal/syntax/scanner"
	"go.followtheprocess.codes/fruition/internal/syntax/token"
)

// sigils are the control characters that may lead an interpolation body and are
// never part of the bound name, e.g. the '#' in '{#if ready}' or the '@' in '{@html raw}'.
const sigils = "#^/:@&!>{=~*"

// Options configures which template syntaxes are recognised.
type Options struct {
	// Sections enables sectioned binding discovery, '{{#key}}...{{/key}}' opens
	// a scope and '{{#key prop}}' binds prop rather than key.
	//
	// With Sections disabled, section tags are treated as simple interpolations.
	Sections bool

	// SingleBrace enables '{ key }' interpolation alongside '{{ key }}'.
	SingleBrace bool
}

// Binding is a single identifier referenced from the template.
type Binding struct {
	// Parent is the section enclosing this binding, nil at the top level.
	Parent *Binding `json:"-" toml:"-" yaml:"-"`

	// Key is the bound identifier.
	Key string `json:"key" toml:"key" yaml:"key"`

	// Span is the location of the key where it was first recorded.
	Span syntax.Span `json:"span" toml:"span" yaml:"span"`

	// Root is true for bindings that are not nested in any section.
	Root bool `json:"root" toml:"root" yaml:"root"`

	// Unless is true when the binding comes from an inverted section '{{^key}}'.
	Unless bool `json:"unless,omitempty" toml:"unless,omitempty" yaml:"unless,omitempty"`
}

// Occurrence is a single place in the document where an identifier is bound.
type Occurrence struct {
	Key  string      // The bound identifier
	Span syntax.Span // Where the identifier sits in the document
}

// Result is everything discovered in a single document.
type Result struct {
	// Tags are the distinct opening tag names, in the order first seen.
	Tags []string

	// Bindings are the distinct bindings per scope level, parents always
	// precede their children.
	Bindings []*Binding

	// Occurrences lists every interpolated identifier in document order,
	// including repeats and those nested in sections.
	Occurrences []Occurrence
}

// Roots returns the bindings that sit at the top level of the document.
func (r Result) Roots() []*Binding {
	roots := make([]*Binding, 0, len(r.Bindings))

	for _, binding := range r.Bindings {
		if binding.Root {
			roots = append(roots, binding)
		}
	}

	return roots
}

// HasTag reports whether the document opens a tag called name.
func (r Result) HasTag(name string) bool {
	return slices.Contains(r.Tags, name)
}

// First returns the first occurrence of key in document order.
func (r Result) First(key string) (Occurrence, bool) {
	for _, occurrence := range r.Occurrences {
		if occurrence.Key == key {
			return occurrence, true
		}
	}

	return Occurrence{}, false
}

// item is a complete interpolation lifted out of the token stream.
type item struct {
	body syntax.Span // The interpolation body between the delimiters
	kind token.Kind  // The kind of the opening delimiter
}

// parser holds the working state of a single call to [Scan].
type parser struct {
	src     []byte                           // The document
	seen    map[*Binding]map[string]*Binding // Bindings recorded per scope, keyed by parent
	result  Result                           // What we've found so far
	options Options                          // Recognised syntax
}

// Scan discovers the tags and bindings of a template document.
//
// Scan never fails, anything it can't make sense of is skipped.
func Scan(src []byte, options Options) Result {
	mode := scanner.Mode(0)
	if options.SingleBrace {
		mode |= scanner.SingleBrace
	}

	p := &parser{
		src:     src,
		seen:    make(map[*Binding]map[string]*Binding),
		options: options,
	}

	items := p.collect(scanner.New(src, mode).Tokens())

	p.occurrences(items)

	if options.Sections {
		p.sections(items, nil)
	} else {
		p.simple(items, nil)
	}

	return p.result
}

// collect gathers tags into the result and lifts complete interpolations out of
// the token stream, everything else is discarded.
func (p *parser) collect(tokens []token.Token) []item {
	var items []item

	for i, tok := range tokens {
		switch {
		case tok.Is(token.Tag):
			name := string(p.src[tok.Start:tok.End])
			if name != "" && !slices.Contains(p.result.Tags, name) {
				p.result.Tags = append(p.result.Tags, name)
			}
		case tok.IsOpen():
			// The scanner only emits an opening delimiter when it has seen the close
			// so the body and close tokens are always next
			if i+2 < len(tokens) && tokens[i+1].Is(token.Body) && tokens[i+2].Is(token.CloseInterp) {
				body := syntax.Span{Start: tokens[i+1].Start, End: tokens[i+1].End}
				items = append(items, item{kind: tok.Kind, body: body})
			}
		}
	}

	return items
}

// occurrences records every bound identifier in document order.
func (p *parser) occurrences(items []item) {
	for _, it := range items {
		if it.kind == token.OpenEnd {
			continue
		}

		if p.options.Sections && it.kind != token.OpenInterp {
			if _, prop, ok := p.sectionKeys(it); ok {
				p.result.Occurrences = append(p.result.Occurrences, Occurrence{Key: p.text(prop), Span: prop})
			}

			continue
		}

		if span, ok := p.simpleKey(it); ok {
			p.result.Occurrences = append(p.result.Occurrences, Occurrence{Key: p.text(span), Span: span})
		}
	}
}

// sections discovers sectioned bindings at one scope level.
//
// It repeatedly finds the first section whose matching close exists, records it,
// recurses into its contents with the section as parent then removes the whole
// section from the working set so the next one at this level can be found. Whatever
// is left over at the end is handled as simple interpolation.
func (p *parser) sections(items []item, parent *Binding) {
	working := slices.Clone(items)

	for {
		open, end, ok := p.firstSection(working)
		if !ok {
			break
		}

		scope := parent

		if _, prop, ok := p.sectionKeys(working[open]); ok {
			unless := working[open].kind == token.OpenInverted
			scope = p.record(p.text(prop), prop, parent, unless)
		}

		p.sections(working[open+1:end], scope)

		working = slices.Delete(working, open, end+1)
	}

	p.simple(working, parent)
}

// firstSection returns the index of the first section opener in items that has a
// matching close, and the index of that close.
//
// Sections of the same name may nest, so the match is depth aware.
func (p *parser) firstSection(items []item) (open, end int, ok bool) {
	for i, candidate := range items {
		if !candidate.kind.IsSection() {
			continue
		}

		name, found := p.sectionName(candidate)
		if !found {
			continue
		}

		key := p.text(name)
		depth := 0

		for j := i + 1; j < len(items); j++ {
			inner := items[j]

			innerName, found := p.sectionName(inner)
			if !found || p.text(innerName) != key {
				continue
			}

			switch {
			case inner.kind.IsSection():
				depth++
			case inner.kind == token.OpenEnd && depth == 0:
				return i, j, true
			case inner.kind == token.OpenEnd:
				depth--
			}
		}
	}

	return 0, 0, false
}

// simple records a binding for every interpolation in items.
func (p *parser) simple(items []item, parent *Binding) {
	for _, it := range items {
		span, ok := p.simpleKey(it)
		if !ok {
			continue
		}

		p.record(p.text(span), span, parent, false)
	}
}

// record adds a binding for key in the scope below parent, returning the
// existing binding if the key has already been seen at this level.
func (p *parser) record(key string, span syntax.Span, parent *Binding, unless bool) *Binding {
	scope, ok := p.seen[parent]
	if !ok {
		scope = make(map[string]*Binding)
		p.seen[parent] = scope
	}

	if existing, ok := scope[key]; ok {
		return existing
	}

	binding := &Binding{
		Key:    key,
		Span:   span,
		Root:   parent == nil,
		Unless: unless,
		Parent: parent,
	}

	scope[key] = binding
	p.result.Bindings = append(p.result.Bindings, binding)

	return binding
}

// sectionKeys splits a section body like 'each items' into the name that has
// to appear in the closing tag and the identifier actually bound.
//
// The bound identifier is the name itself unless a second word is given and
// sections are enabled. ok is false if the body has no usable name, or if it
// would bind a reserved or script keyword.
func (p *parser) sectionKeys(it item) (name, bound syntax.Span, ok bool) {
	name, ok = p.sectionName(it)
	if !ok {
		return syntax.Span{}, syntax.Span{}, false
	}

	bound = name

	if p.options.Sections && it.kind != token.OpenEnd {
		rest := skipSpace(p.src, syntax.Span{Start: name.End, End: it.body.End})
		if prop, found := identAt(p.src, rest); found {
			bound = prop
		}
	}

	if bound == name && token.Reserved(p.text(name)) && it.kind != token.OpenEnd {
		// e.g. '{{#each}}' with nothing to iterate, keep the name for matching
		// the close but don't bind anything
		return name, name, false
	}

	if it.kind != token.OpenEnd && token.Keyword(p.text(bound)) {
		return name, bound, false
	}

	return name, bound, true
}

// sectionName returns the span of the name a section is opened and closed with.
func (p *parser) sectionName(it item) (syntax.Span, bool) {
	return identAt(p.src, skipSigils(p.src, it.body))
}

// simpleKey returns the span of the identifier bound by a simple interpolation.
func (p *parser) simpleKey(it item) (syntax.Span, bool) {
	span, ok := identAt(p.src, skipSigils(p.src, it.body))
	if !ok || token.Reserved(p.text(span)) || token.Keyword(p.text(span)) {
		return syntax.Span{}, false
	}

	return span, true
}

// text returns the source text under span.
func (p *parser) text(span syntax.Span) string {
	return string(p.src[span.Start:span.End])
}

// skipSigils returns the span with leading whitespace and control sigils removed.
func skipSigils(src []byte, span syntax.Span) syntax.Span {
	for span.Start < span.End {
		char := src[span.Start]
		if !isSpace(char) && !strings.ContainsRune(sigils, rune(char)) {
			break
		}

		span.Start++
	}

	return span
}

// skipSpace returns the span with leading whitespace removed.
func skipSpace(src []byte, span syntax.Span) syntax.Span {
	for span.Start < span.End && isSpace(src[span.Start]) {
		span.Start++
	}

	return span
}

// identAt returns the span of the identifier at the very start of span, the first
// segment of a path like 'user.name' or 'items[0]'.
func identAt(src []byte, span syntax.Span) (syntax.Span, bool) {
	if span.Start >= span.End || !isIdentStart(src[span.Start]) {
		return syntax.Span{}, false
	}

	end := span.Start + 1
	for end < span.End && isIdent(src[end]) {
		end++
	}

	return syntax.Span{Start: span.Start, End: end}, true
}

// isIdentStart reports whether char may begin an identifier.
func isIdentStart(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == '_' || char == '$'
}

// isIdent reports whether char may continue an identifier.
func isIdent(char byte) bool {
	return isIdentStart(char) || (char >= '0' && char <= '9')
}

// isSpace reports whether char is ASCII whitespace.
func isSpace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r' || char == '\f' || char == '\v'
}
