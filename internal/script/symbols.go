package script

import (
	"fmt"
	"slices"
	"strings"

	"go.followtheprocess.codes/fruition/internal/syntax"
	"go.followtheprocess.codes/fruition/internal/syntax/token"
)

// Kind is the kind of declaration that introduced a name.
type Kind int

const (
	Let       Kind = iota // let
	Const                 // const
	Function              // function
	Generator             // function*
	Import                // import
	Default               // default
	Class                 // class
)

// String implements [fmt.Stringer] for a [Kind].
func (k Kind) String() string {
	switch k {
	case Let:
		return "let"
	case Const:
		return "const"
	case Function:
		return "function"
	case Generator:
		return "function*"
	case Import:
		return "import"
	case Default:
		return "default"
	case Class:
		return "class"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements [encoding.TextMarshaler] for a [Kind].
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Binds reports whether a name of this kind is a variable binding, one that would
// be a redeclaration error to declare again with let.
func (k Kind) Binds() bool {
	return k == Let || k == Const
}

// Symbol is a single name declared at the top level of a script.
type Symbol struct {
	Name     string      `json:"name"     toml:"name"     yaml:"name"`     // The declared name
	Span     syntax.Span `json:"span"     toml:"span"     yaml:"span"`     // Where the name is in the script
	Kind     Kind        `json:"kind"     toml:"kind"     yaml:"kind"`     // How it was declared
	Exported bool        `json:"exported" toml:"exported" yaml:"exported"` // Whether it was declared with export
}

// Table is an ordered mapping of identifier to the kind of declaration that
// introduced it, optionally nested inside a parent table.
type Table struct {
	kinds  map[string]Kind
	parent *Table
	names  []string
}

// NewTable returns a new, empty [Table] with no parent.
func NewTable() *Table {
	return &Table{
		kinds:  make(map[string]Kind),
		parent: nil,
	}
}

// Child returns a new, empty [Table] using the calling one as a parent.
func (t *Table) Child() *Table {
	return &Table{
		kinds:  make(map[string]Kind),
		parent: t,
	}
}

// Set records name with the given kind, overwriting any previous kind.
func (t *Table) Set(name string, kind Kind) {
	if _, exists := t.kinds[name]; !exists {
		t.names = append(t.names, name)
	}

	t.kinds[name] = kind
}

// Define records name with the given kind unless it is already present, in
// which case the first kind wins. It reports whether name was added.
func (t *Table) Define(name string, kind Kind) bool {
	if _, exists := t.kinds[name]; exists {
		return false
	}

	t.Set(name, kind)

	return true
}

// Lookup walks up the chain of tables to find the kind of name, the innermost
// table wins.
func (t *Table) Lookup(name string) (Kind, bool) {
	if kind, ok := t.kinds[name]; ok {
		return kind, true
	}

	if t.parent != nil {
		return t.parent.Lookup(name)
	}

	return 0, false
}

// Has reports whether name is declared in this table, ignoring any parent.
func (t *Table) Has(name string) bool {
	_, ok := t.kinds[name]
	return ok
}

// Names returns the names declared in this table, in the order first recorded.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of names declared in this table, ignoring any parent.
func (t *Table) Len() int {
	return len(t.names)
}

// Symbols returns the names declared at the top level of this table as symbols,
// in the order first recorded.
func (t *Table) Symbols() []Symbol {
	symbols := make([]Symbol, 0, len(t.names))
	for _, name := range t.names {
		symbols = append(symbols, Symbol{Name: name, Kind: t.kinds[name]})
	}

	return symbols
}

// String implements [fmt.Stringer] for a [Table].
func (t *Table) String() string {
	var s strings.Builder

	s.WriteByte('{')

	for i, name := range t.names {
		if i > 0 {
			s.WriteString(", ")
		}

		fmt.Fprintf(&s, "%s: %s", name, t.kinds[name])
	}

	s.WriteByte('}')

	return s.String()
}

// Declarations returns every name declared at the top level of a script in
// source order: exports, imports and plain declarations.
//
// Nothing nested inside braces, brackets or parens is ever considered, so locals
// of functions and blocks are not reported.
func Declarations(src string) []Symbol {
	d := &declarations{tokens: Code(Lex(src))}
	d.run()

	return d.symbols
}

// declarations is the state of a single call to [Declarations].
type declarations struct {
	tokens  []Token  // Significant tokens of the script
	symbols []Symbol // What we've found so far
	pos     int      // Index of the current token
	depth   int      // Current nesting depth of brackets
}

// run walks the token stream, dispatching at every top level statement keyword.
func (d *declarations) run() {
	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		if d.depth > 0 || !d.statementStart() {
			d.track(tok)
			d.pos++

			continue
		}

		switch {
		case tok.Is("export"):
			d.pos++
			d.export()
		case tok.Is("import") && !d.peekIs(1, "(") && !d.peekIs(1, "."):
			d.pos++
			d.importClause()
		case tok.Is("let"), tok.Is("const"), tok.Is("var"):
			d.pos++
			d.variables(varKind(tok.Text), false)
		case tok.Is("async") && d.peekIs(1, "function"):
			d.pos += 2
			d.function(false, Function)
		case tok.Is("function"):
			d.pos++
			d.function(false, Function)
		case tok.Is("class"):
			d.pos++
			d.class(false, Class)
		default:
			d.track(tok)
			d.pos++
		}
	}
}

// statementStart reports whether the current token can begin a statement, i.e.
// it's the first token or follows one that ends a statement.
func (d *declarations) statementStart() bool {
	if d.pos == 0 {
		return true
	}

	prev := d.tokens[d.pos-1]

	// A newline between tokens only ends a statement if the previous one could
	// have finished an expression, e.g. not after '=' or ','
	return prev.Is(";") || prev.Is("}") || prev.Is("{") ||
		(d.newlineBefore(d.pos) && endsExpression(prev))
}

// export handles everything after an 'export' keyword.
func (d *declarations) export() {
	if d.peekIs(0, "async") {
		d.pos++
	}

	switch {
	case d.peekIs(0, "let"), d.peekIs(0, "const"), d.peekIs(0, "var"):
		kind := varKind(d.tokens[d.pos].Text)
		d.pos++
		d.variables(kind, true)
	case d.peekIs(0, "function"):
		d.pos++
		d.function(true, Function)
	case d.peekIs(0, "class"):
		d.pos++
		d.class(true, Class)
	case d.peekIs(0, "default"):
		d.pos++
		d.exportDefault()
	}
}

// exportDefault handles 'export default ...', the exported thing is recorded with
// the default kind if it is named.
func (d *declarations) exportDefault() {
	if d.peekIs(0, "async") {
		d.pos++
	}

	switch {
	case d.peekIs(0, "function"):
		d.pos++
		d.function(true, Default)
	case d.peekIs(0, "class"):
		d.pos++
		d.class(true, Default)
	case d.peekKind(0, Ident) && !d.peekIs(1, "("):
		d.add(d.tokens[d.pos], Default, true)
		d.pos++
	}
}

// function handles a function declaration after the 'function' keyword.
func (d *declarations) function(exported bool, kind Kind) {
	if d.peekIs(0, "*") {
		d.pos++

		if kind == Function {
			kind = Generator
		}
	}

	if d.peekKind(0, Ident) {
		d.add(d.tokens[d.pos], kind, exported)
		d.pos++
	}
}

// class handles a class declaration after the 'class' keyword.
func (d *declarations) class(exported bool, kind Kind) {
	if d.peekKind(0, Ident) && !d.peekIs(0, "extends") {
		d.add(d.tokens[d.pos], kind, exported)
		d.pos++
	}
}

// variables handles the declarator list after 'let', 'const' or 'var'.
func (d *declarations) variables(kind Kind, exported bool) {
	for d.pos < len(d.tokens) {
		d.pattern(kind, exported)

		if d.peekIs(0, "=") {
			d.pos++
			d.skipExpression()
		}

		if !d.peekIs(0, ",") {
			return
		}

		d.pos++
	}
}

// pattern records the names bound by a single declarator target, a plain name or
// an object/array destructuring pattern.
func (d *declarations) pattern(kind Kind, exported bool) {
	if d.pos >= len(d.tokens) {
		return
	}

	tok := d.tokens[d.pos]

	switch {
	case tok.Kind == Ident:
		d.add(tok, kind, exported)
		d.pos++
	case tok.Is("{"), tok.Is("["):
		d.destructure(kind, exported)
	}
}

// destructure records the names bound in a destructuring pattern, the current
// token is its opening bracket.
func (d *declarations) destructure(kind Kind, exported bool) {
	depth := 0

	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		switch {
		case tok.Is("{"), tok.Is("["):
			depth++
		case tok.Is("}"), tok.Is("]"):
			depth--
			if depth == 0 {
				d.pos++
				return
			}
		case tok.Is("="):
			// Default value, skip to the end of the element
			d.pos++
			d.skipElement()

			continue
		case tok.Kind == Ident && !d.peekIs(1, ":") && !d.peekIs(1, "("):
			d.add(tok, kind, exported)
		}

		d.pos++
	}
}

// skipElement skips a default value inside a destructuring pattern, stopping
// at the ',' or closing bracket that ends the element.
func (d *declarations) skipElement() {
	depth := 0

	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		switch {
		case tok.Is("("), tok.Is("{"), tok.Is("["):
			depth++
		case tok.Is(")"), tok.Is("}"), tok.Is("]"):
			if depth == 0 {
				return
			}

			depth--
		case tok.Is(",") && depth == 0:
			return
		}

		d.pos++
	}
}

// skipExpression skips an initializer, stopping at a ',' or ';' at the same
// depth or at a newline that ends the statement.
func (d *declarations) skipExpression() {
	depth := 0
	start := d.pos

	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		if depth == 0 && d.pos > start && d.newlineBefore(d.pos) &&
			endsExpression(d.tokens[d.pos-1]) && startsStatement(tok) {
			return
		}

		switch {
		case tok.Is("("), tok.Is("{"), tok.Is("["):
			depth++
		case tok.Is(")"), tok.Is("}"), tok.Is("]"):
			if depth == 0 {
				return
			}

			depth--
		case depth == 0 && (tok.Is(",") || tok.Is(";")):
			return
		}

		d.pos++
	}
}

// importClause handles everything after an 'import' keyword.
func (d *declarations) importClause() {
	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		switch {
		case tok.Kind == String, tok.Is(";"):
			// Either a bare side effect import or the module specifier after 'from'
			d.pos++
			return
		case tok.Is("from"):
			d.pos++
		case tok.Is(","):
			d.pos++
		case tok.Is("*"):
			// '* as ns'
			d.pos++
			if d.peekIs(0, "as") && d.peekKind(1, Ident) {
				d.add(d.tokens[d.pos+1], Import, false)
				d.pos += 2
			}
		case tok.Is("{"):
			d.pos++
			d.namedImports()
		case tok.Kind == Ident:
			d.add(tok, Import, false)
			d.pos++
		default:
			return
		}
	}
}

// namedImports handles the '{ a, b as c }' list of an import, the opening
// brace has been consumed.
func (d *declarations) namedImports() {
	for d.pos < len(d.tokens) {
		tok := d.tokens[d.pos]

		switch {
		case tok.Is("}"):
			d.pos++
			return
		case tok.Is(","):
			d.pos++
		case tok.Kind == Ident || tok.Kind == String:
			local := tok
			d.pos++

			if d.peekIs(0, "as") && d.peekKind(1, Ident) {
				local = d.tokens[d.pos+1]
				d.pos += 2
			}

			if local.Kind == Ident {
				d.add(local, Import, false)
			}
		default:
			d.pos++
		}
	}
}

// add records a symbol, keywords are never names.
func (d *declarations) add(tok Token, kind Kind, exported bool) {
	if keyword(tok.Text) {
		return
	}

	d.symbols = append(d.symbols, Symbol{
		Name:     tok.Text,
		Kind:     kind,
		Span:     tok.Span,
		Exported: exported,
	})
}

// track maintains the bracket depth.
func (d *declarations) track(tok Token) {
	switch {
	case tok.Is("("), tok.Is("{"), tok.Is("["):
		d.depth++
	case tok.Is(")"), tok.Is("}"), tok.Is("]"):
		d.depth = max(d.depth-1, 0)
	}
}

// peekIs reports whether the token offset places from the current one is text.
func (d *declarations) peekIs(offset int, text string) bool {
	i := d.pos + offset
	return i < len(d.tokens) && d.tokens[i].Is(text)
}

// peekKind reports whether the token offset places from the current one is of kind.
func (d *declarations) peekKind(offset int, kind TokenKind) bool {
	i := d.pos + offset
	return i < len(d.tokens) && d.tokens[i].Kind == kind
}

// newlineBefore reports whether a newline separates token i from the one before it.
func (d *declarations) newlineBefore(i int) bool {
	return i > 0 && i < len(d.tokens) && d.tokens[i].NewlineBefore
}

// endsExpression reports whether an expression may end with tok.
func endsExpression(tok Token) bool {
	switch tok.Kind {
	case Ident:
		return !keyword(tok.Text) || tok.Is("this") || tok.Is("true") || tok.Is("false") || tok.Is("null")
	case Number, String, Template, Regexp:
		return true
	default:
		return tok.Is(")") || tok.Is("]") || tok.Is("}")
	}
}

// startsStatement reports whether tok can only be the start of a new statement
// when it follows a complete expression on a previous line.
func startsStatement(tok Token) bool {
	switch tok.Kind {
	case Ident, Number, String, Template:
		return true
	default:
		return tok.Is("{")
	}
}

// varKind maps a variable declaration keyword to its [Kind], var is treated as let.
func varKind(keyword string) Kind {
	if keyword == "const" {
		return Const
	}

	return Let
}

// keyword reports whether text is a reserved word that can never be a binding name.
func keyword(text string) bool {
	return text == "default" || text == "class" || token.Keyword(text)
}
