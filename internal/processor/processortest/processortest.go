// Package processortest provides a tiny stand in for a real script linter so the
// preprocess/lint/postprocess round trip can be tested end to end.
//
// The linter implements a single rule, no-undef, over the script regions of a document.
// It's deliberately naive about scope: a name counts as declared if it is declared
// at the top level of any script region in the same file, or is a well known global.
package processortest

import (
	"fmt"
	"strings"

	"go.followtheprocess.codes/fruition/internal/document"
	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/fruition/internal/script"
	"go.followtheprocess.codes/fruition/internal/syntax"
)

// globals are names the browser and es6 environments provide.
var globals = map[string]bool{
	"console": true, "window": true, "document": true, "Math": true, "JSON": true,
	"Promise": true, "Object": true, "Array": true, "String": true, "Number": true,
	"Date": true, "Error": true, "fetch": true, "setTimeout": true, "undefined": true,
	"NaN": true, "Infinity": true, "Symbol": true, "Map": true, "Set": true,
}

// keywords are reserved words that are never references.
var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "export": true,
	"extends": true, "finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "return": true, "super": true, "switch": true,
	"this": true, "throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true, "await": true,
	"async": true, "of": true, "as": true, "from": true, "null": true, "true": true, "false": true,
}

// Lint lints every virtual file for undefined identifiers, returning the messages
// for each file in the shape [processor.Processor.Postprocess] expects.
func Lint(files []string) [][]processor.Message {
	messages := make([][]processor.Message, 0, len(files))
	for _, file := range files {
		messages = append(messages, LintFile(file))
	}

	return messages
}

// LintFile lints a single file for undefined identifiers.
func LintFile(text string) []processor.Message {
	regions := document.Scripts(text)

	declared := make(map[string]bool)

	for _, region := range regions {
		for _, symbol := range script.Declarations(region.Content) {
			declared[symbol.Name] = true
		}
	}

	var messages []processor.Message

	for _, region := range regions {
		tokens := script.Lex(region.Content)
		disabled := false

		for i, tok := range tokens {
			if tok.Kind == script.Comment {
				switch {
				case strings.Contains(tok.Text, "eslint-disable"):
					disabled = true
				case strings.Contains(tok.Text, "eslint-enable"):
					disabled = false
				}

				continue
			}

			if disabled || tok.Kind != script.Ident || !isReference(tokens, i) {
				continue
			}

			if declared[tok.Text] || globals[tok.Text] || keywords[tok.Text] {
				continue
			}

			span := syntax.Span{
				Start: region.ContentStart + tok.Span.Start,
				End:   region.ContentStart + tok.Span.End,
			}

			pos := syntax.PositionOf("", []byte(text), span)

			messages = append(messages, processor.Message{
				RuleID:    "no-undef",
				Severity:  processor.SeverityError,
				Message:   fmt.Sprintf("'%s' is not defined.", tok.Text),
				Line:      pos.Line,
				Column:    pos.StartCol,
				EndLine:   pos.Line,
				EndColumn: pos.EndCol,
				Source:    lineAt(text, pos.Offset),
			})
		}
	}

	return messages
}

// isReference reports whether the identifier at tokens[i] reads a variable, as opposed
// to naming a property, an object key or a label.
func isReference(tokens []script.Token, i int) bool {
	prev, hasPrev := significant(tokens, i, -1)
	next, hasNext := significant(tokens, i, 1)

	if hasPrev && prev.Is(".") {
		return false
	}

	if hasNext && next.Is(":") {
		// Labels and object keys, the '$:' reactive label included
		return false
	}

	// The imported or exported name in 'x as y'
	return !hasNext || !next.Is("as")
}

// significant returns the nearest non comment token to tokens[i] in the given direction.
func significant(tokens []script.Token, i, step int) (script.Token, bool) {
	for j := i + step; j >= 0 && j < len(tokens); j += step {
		if tokens[j].Kind != script.Comment {
			return tokens[j], true
		}
	}

	return script.Token{}, false
}

// lineAt returns the full line of text containing offset.
func lineAt(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1

	end := strings.IndexByte(text[offset:], '\n')
	if end == -1 {
		return text[start:]
	}

	return text[start : offset+end]
}
