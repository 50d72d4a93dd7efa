package processor

import (
	"path/filepath"
	"slices"
	"strings"

	"go.followtheprocess.codes/fruition/internal/document"
	"go.followtheprocess.codes/fruition/internal/script"
	"go.followtheprocess.codes/fruition/internal/template"
)

// Loader returns the original text of the document being postprocessed.
type Loader func() ([]byte, error)

// Symbols is everything declared by the script regions of a document.
type Symbols struct {
	// Module holds names declared in module context regions, it is the parent of
	// every table in Regions.
	Module *script.Table

	// Regions holds the names each region declares, in the same order as the regions.
	// A module context region's table is Module itself.
	Regions []*script.Table

	// Exports holds the names each region exports, in the same order as the regions.
	Exports [][]string
}

// Dialect is a flavour of template document the [Processor] can rewrite.
//
// Every method is a pure function of its arguments.
type Dialect interface {
	// Name returns the name of the dialect, e.g. "html".
	Name() string

	// Placeholder returns the comment that stands in for 'await' in reactive
	// statements while the document is being linted.
	Placeholder() string

	// ScanBindings discovers the tags and bindings of a whole document.
	ScanBindings(src []byte) template.Result

	// ExtractRegions returns the script regions of a document in document order.
	ExtractRegions(src string) []document.Region

	// ClassifyDeclarations builds the symbol tables for a document's script regions.
	ClassifyDeclarations(regions []document.Region) Symbols

	// Synthesize decides the code to generate for region i of regions.
	Synthesize(i int, regions []document.Region, result template.Result, symbols Symbols) Synthesis

	// Remap moves messages reported against generated code back to where they
	// came from in the original document. A dialect that needs the original calls
	// load exactly once, one that doesn't never calls it.
	Remap(messages []Message, load Loader) error
}

// Dialect names.
const (
	NameHTML      = "html"
	NameComponent = "component"
)

// Dialects returns the names of every known dialect.
func Dialects() []string {
	return []string{NameHTML, NameComponent}
}

// DialectNamed returns the dialect called name, ok is false if there isn't one.
func DialectNamed(name string) (dialect Dialect, ok bool) {
	switch strings.ToLower(name) {
	case NameHTML:
		return HTML{}, true
	case NameComponent:
		return Component{}, true
	default:
		return nil, false
	}
}

// DialectFor picks the dialect for a file based on its extension, ok is false if
// the extension is not one we know how to process.
func DialectFor(filename string) (dialect Dialect, ok bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return HTML{}, true
	case ".svelte", ".component":
		return Component{}, true
	default:
		return nil, false
	}
}

// HTML is the dialect of plain HTML pages with mustache style '{{ key }}' interpolation.
//
// Every interpolated name is a binding, sections don't scope anything. Names exported
// from one script of a page are treated as available to all the other scripts on it.
type HTML struct{}

// Name implements [Dialect].
func (HTML) Name() string {
	return NameHTML
}

// Placeholder implements [Dialect], the comment is exactly as wide as 'await' so
// no column in the rewritten document moves.
func (HTML) Placeholder() string {
	return "/* */"
}

// ScanBindings implements [Dialect].
func (HTML) ScanBindings(src []byte) template.Result {
	return template.Scan(src, template.Options{})
}

// ExtractRegions implements [Dialect].
func (HTML) ExtractRegions(src string) []document.Region {
	return document.Scripts(src)
}

// ClassifyDeclarations implements [Dialect].
func (HTML) ClassifyDeclarations(regions []document.Region) Symbols {
	symbols := Symbols{
		Module:  script.NewTable(),
		Regions: make([]*script.Table, 0, len(regions)),
		Exports: make([][]string, 0, len(regions)),
	}

	for _, region := range regions {
		table := symbols.Module.Child()

		var exports []string

		for _, symbol := range script.Declarations(region.Content) {
			table.Set(symbol.Name, symbol.Kind)

			if symbol.Exported {
				exports = append(exports, symbol.Name)
			}
		}

		symbols.Regions = append(symbols.Regions, table)
		symbols.Exports = append(symbols.Exports, exports)
	}

	return symbols
}

// Synthesize implements [Dialect].
func (HTML) Synthesize(i int, regions []document.Region, result template.Result, symbols Symbols) Synthesis {
	candidates := make([]string, 0, len(result.Bindings))
	for _, binding := range result.Bindings {
		candidates = append(candidates, binding.Key)
	}

	for j, exports := range symbols.Exports {
		if j != i {
			candidates = append(candidates, exports...)
		}
	}

	return synthesize(candidates, symbols.Regions[i], rules{})
}

// Remap implements [Dialect], nothing in an HTML page needs moving.
func (HTML) Remap([]Message, Loader) error {
	return nil
}

// Component is the dialect of single file components, with '{key}' and '{{ key }}'
// interpolation, scoping sections and module context scripts.
type Component struct{}

// componentOptions are the template syntaxes of the component dialect.
var componentOptions = template.Options{Sections: true, SingleBrace: true}

// Name implements [Dialect].
func (Component) Name() string {
	return NameComponent
}

// Placeholder implements [Dialect].
func (Component) Placeholder() string {
	return "/**/"
}

// ScanBindings implements [Dialect].
func (Component) ScanBindings(src []byte) template.Result {
	return template.Scan(src, componentOptions)
}

// ExtractRegions implements [Dialect].
func (Component) ExtractRegions(src string) []document.Region {
	return document.Scripts(src)
}

// ClassifyDeclarations implements [Dialect].
//
// Module context regions are classified first as everything they declare is visible
// to the instance regions regardless of order. Exports and imports always record
// their kind, plain declarations keep whichever kind was seen first. Comments are
// scrubbed before anything is classified.
func (Component) ClassifyDeclarations(regions []document.Region) Symbols {
	module := script.NewTable()

	declarations := make([][]script.Symbol, len(regions))
	for i, region := range regions {
		declarations[i] = script.Declarations(script.Scrub(region.Content))
	}

	for i, region := range regions {
		if region.Module {
			record(module, declarations[i])
		}
	}

	symbols := Symbols{
		Module:  module,
		Regions: make([]*script.Table, 0, len(regions)),
		Exports: make([][]string, 0, len(regions)),
	}

	for i, region := range regions {
		table := module
		if !region.Module {
			table = module.Child()
			record(table, declarations[i])
		}

		var exports []string

		for _, symbol := range declarations[i] {
			if symbol.Exported {
				exports = append(exports, symbol.Name)
			}
		}

		symbols.Regions = append(symbols.Regions, table)
		symbols.Exports = append(symbols.Exports, exports)
	}

	return symbols
}

// Synthesize implements [Dialect].
//
// Candidates are the root bindings, plus any tag named after something the region
// imports. A module context region gets nothing inline, whatever it can't satisfy
// itself is deferred.
func (Component) Synthesize(i int, regions []document.Region, result template.Result, symbols Symbols) Synthesis {
	table := symbols.Regions[i]

	roots := result.Roots()

	if regions[i].Module {
		var synthesis Synthesis

		for _, binding := range roots {
			if binding.Key == "default" || binding.Key == "class" {
				continue
			}

			if _, found := table.Lookup(binding.Key); !found && !slices.Contains(synthesis.Deferred, binding.Key) {
				synthesis.Deferred = append(synthesis.Deferred, binding.Key)
			}
		}

		return synthesis
	}

	candidates := make([]string, 0, len(roots)+len(result.Tags))
	for _, binding := range roots {
		candidates = append(candidates, binding.Key)
	}

	for _, tag := range result.Tags {
		if kind, found := table.Lookup(tag); found && kind == script.Import {
			candidates = append(candidates, tag)
		}
	}

	return synthesize(candidates, table, rules{skipKeywords: true})
}

// record adds declarations to table, exports and imports overwrite anything
// already there, plain declarations only fill gaps.
func record(table *script.Table, declarations []script.Symbol) {
	for _, symbol := range declarations {
		if symbol.Exported || symbol.Kind == script.Import {
			table.Set(symbol.Name, symbol.Kind)
		} else {
			table.Define(symbol.Name, symbol.Kind)
		}
	}
}
