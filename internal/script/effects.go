package script

import (
	"strings"

	"go.followtheprocess.codes/fruition/internal/syntax"
)

// awaitKeyword is what [Neutralize] hides and [Restore] puts back.
const awaitKeyword = "await"

// Effect is a reactive statement, one labelled with '$:'.
type Effect struct {
	Label syntax.Span // The '$:' label
	Body  syntax.Span // The labelled statement
}

// Effects returns the reactive statements of a script in source order.
//
// A reactive statement's body is a brace block, a control statement like
// 'if (x) { ... } else { ... }' up to the end of its last block, or a single
// statement running up to ';' or the end of its line.
func Effects(src string) []Effect {
	tokens := Code(Lex(src))

	var effects []Effect

	depth := 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// Labels are only reactive at the top level, anything deeper could be an object key
		if depth == 0 && isLabel(tokens, i) && atStatementStart(tokens, i) {
			end := statementEnd(tokens, i+2)

			effects = append(effects, Effect{
				Label: syntax.Span{Start: tok.Span.Start, End: tokens[i+1].Span.End},
				Body:  syntax.Span{Start: tokens[i+2].Span.Start, End: tokens[end].Span.End},
			})

			i = end

			continue
		}

		switch {
		case tok.Is("("), tok.Is("{"), tok.Is("["):
			depth++
		case tok.Is(")"), tok.Is("}"), tok.Is("]"):
			depth = max(depth-1, 0)
		}
	}

	return effects
}

// Neutralize replaces every 'await' inside a reactive statement with placeholder,
// which is expected to be a comment so the statement still parses outside of an
// async function. Everything else is left exactly as it was.
//
// The result is undone by [Restore].
func Neutralize(src, placeholder string) string {
	effects := Effects(src)
	if len(effects) == 0 {
		return src
	}

	var out strings.Builder
	out.Grow(len(src))

	last := 0
	effect := 0

	for _, tok := range Code(Lex(src)) {
		for effect < len(effects) && effects[effect].Body.End <= tok.Span.Start {
			effect++
		}

		if effect == len(effects) {
			break
		}

		body := effects[effect].Body
		if tok.Kind != Ident || tok.Text != awaitKeyword || tok.Span.Start < body.Start {
			continue
		}

		out.WriteString(src[last:tok.Span.Start])
		out.WriteString(placeholder)

		last = tok.Span.End
	}

	out.WriteString(src[last:])

	return out.String()
}

// Restore undoes [Neutralize], turning every placeholder back into 'await'.
func Restore(src, placeholder string) string {
	if placeholder == "" {
		return src
	}

	return strings.ReplaceAll(src, placeholder, awaitKeyword)
}

// isLabel reports whether token i is a '$:' label with a statement after it.
func isLabel(tokens []Token, i int) bool {
	if i+2 >= len(tokens) {
		return false
	}

	return tokens[i].Is("$") && tokens[i+1].Is(":") && tokens[i].Span.End == tokens[i+1].Span.Start
}

// atStatementStart reports whether token i begins a statement.
func atStatementStart(tokens []Token, i int) bool {
	if i == 0 {
		return true
	}

	prev := tokens[i-1]

	return prev.Is(";") || prev.Is("{") || prev.Is("}") || tokens[i].NewlineBefore
}

// statementEnd returns the index of the last token of the statement beginning
// at token start.
func statementEnd(tokens []Token, start int) int {
	tok := tokens[start]

	switch {
	case tok.Is("{"):
		return matching(tokens, start)
	case tok.Is("if"), tok.Is("for"), tok.Is("while"), tok.Is("switch"), tok.Is("with"),
		tok.Is("try"), tok.Is("do"):
		return controlEnd(tokens, start)
	default:
		return simpleEnd(tokens, start)
	}
}

// controlEnd returns the index of the last token of a control statement, following
// any 'else', 'catch' or 'finally' clauses and the 'while' of a do loop.
func controlEnd(tokens []Token, start int) int {
	i := start + 1

	// Parenthesised head, 'catch' may omit it
	if i < len(tokens) && tokens[i].Is("(") {
		i = matching(tokens, i) + 1
	}

	if i >= len(tokens) {
		return len(tokens) - 1
	}

	var end int
	if tokens[i].Is("{") {
		end = matching(tokens, i)
	} else {
		end = statementEnd(tokens, i)
	}

	next := end + 1
	if next >= len(tokens) {
		return end
	}

	switch {
	case tokens[next].Is("else"):
		if next+1 < len(tokens) && tokens[next+1].Is("if") {
			return controlEnd(tokens, next+1)
		}

		return controlEnd(tokens, next)
	case tokens[next].Is("catch"), tokens[next].Is("finally"):
		return controlEnd(tokens, next)
	case tokens[start].Is("do") && tokens[next].Is("while"):
		return simpleEnd(tokens, next)
	default:
		return end
	}
}

// simpleEnd returns the index of the last token of a plain statement, the one
// holding its ';' or the last one before a line break at the same depth.
func simpleEnd(tokens []Token, start int) int {
	depth := 0

	for i := start; i < len(tokens); i++ {
		tok := tokens[i]

		if i > start && depth == 0 && tok.NewlineBefore {
			return i - 1
		}

		switch {
		case tok.Is("("), tok.Is("{"), tok.Is("["):
			depth++
		case tok.Is(")"), tok.Is("}"), tok.Is("]"):
			if depth == 0 {
				return max(i-1, start)
			}

			depth--
		case tok.Is(";") && depth == 0:
			return i
		}
	}

	return len(tokens) - 1
}

// matching returns the index of the bracket closing the one at index open, or the
// last token if it is never closed.
func matching(tokens []Token, open int) int {
	depth := 0

	for i := open; i < len(tokens); i++ {
		switch {
		case tokens[i].Is("("), tokens[i].Is("{"), tokens[i].Is("["):
			depth++
		case tokens[i].Is(")"), tokens[i].Is("}"), tokens[i].Is("]"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return len(tokens) - 1
}
