package processor

import (
	"slices"
	"strings"

	"go.followtheprocess.codes/fruition/internal/script"
)

// Directives wrapping synthesized code so the linter never reports on it.
const (
	disable = "/* eslint-disable */"
	enable  = "/* eslint-enable */"
)

// Synthesis is the code generated for a single script region so that every name
// the template uses is known to the linter.
type Synthesis struct {
	// Declare are names nothing declares, they get a 'let'.
	Declare []string `json:"declare,omitempty" toml:"declare,omitempty" yaml:"declare,omitempty"`

	// Reference are names declared as something other than a variable, e.g. an
	// import or a function. They get a bare expression statement so they count as used.
	Reference []string `json:"reference,omitempty" toml:"reference,omitempty" yaml:"reference,omitempty"`

	// Deferred are names a module context region could not satisfy itself,
	// they are declared in a trailing virtual file instead.
	Deferred []string `json:"deferred,omitempty" toml:"deferred,omitempty" yaml:"deferred,omitempty"`
}

// Empty reports whether the synthesis generates no code for its region.
func (s Synthesis) Empty() bool {
	return len(s.Declare) == 0 && len(s.Reference) == 0
}

// Names returns every name given inline code, declared or referenced.
func (s Synthesis) Names() []string {
	return slices.Concat(s.Declare, s.Reference)
}

// Line renders the synthesis as a single line of script to be inserted straight
// after the region's opening tag, so no line numbers in the region move.
//
// An empty synthesis renders as the empty string.
func (s Synthesis) Line() string {
	if s.Empty() {
		return ""
	}

	var line strings.Builder

	line.WriteString(disable)

	if len(s.Declare) > 0 {
		line.WriteString("let ")
		line.WriteString(strings.Join(s.Declare, ", "))
		line.WriteString(";")
	}

	for _, name := range s.Reference {
		line.WriteString(name)
		line.WriteString(";")
	}

	line.WriteString(enable)

	return line.String()
}

// moduleBlock renders the trailing virtual file declaring names, or the empty
// string if there aren't any.
func moduleBlock(names []string) string {
	if len(names) == 0 {
		return ""
	}

	return "<script>" + disable + "let " + strings.Join(names, ", ") + ";" + enable + "</script>"
}

// rules tweak how candidates are turned into a [Synthesis].
type rules struct {
	// skipKeywords skips the names 'default' and 'class' unless they are imports,
	// neither can ever be declared with let.
	skipKeywords bool
}

// synthesize decides what every candidate name needs, looking up how (or whether)
// it is already declared in table.
//
// Variables are skipped as declaring them again would be an error, anything else
// already declared is referenced and everything unknown is declared. Candidates are
// handled in order and each name at most once.
func synthesize(candidates []string, table *script.Table, r rules) Synthesis {
	var synthesis Synthesis

	seen := make(map[string]bool, len(candidates))

	for _, name := range candidates {
		if seen[name] {
			continue
		}

		seen[name] = true

		kind, found := table.Lookup(name)

		switch {
		case found && kind.Binds():
			continue
		case r.skipKeywords && (name == "default" || name == "class") && (!found || kind != script.Import):
			continue
		case found:
			synthesis.Reference = append(synthesis.Reference, name)
		default:
			synthesis.Declare = append(synthesis.Declare, name)
		}
	}

	return synthesis
}
