// Package processor implements the preprocess/postprocess pair a script linter calls
// around linting a template document.
//
// Preprocess rewrites the document so that everything the template refers to is
// declared in its scripts, and hides syntax the linter would choke on. The linter then
// lints the rewritten document (and any extra virtual files) and Postprocess turns the
// messages it reports back into messages about the original document.
package processor

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"go.followtheprocess.codes/fruition/internal/document"
	"go.followtheprocess.codes/fruition/internal/script"
	"go.followtheprocess.codes/fruition/internal/template"
	"go.followtheprocess.codes/log"
)

// Processor rewrites documents of a single [Dialect] for linting.
//
// A Processor holds no state between calls and is safe for concurrent use.
type Processor struct {
	dialect  Dialect                           // The template dialect
	logger   *log.Logger                       // Debug logging of each phase
	readFile func(name string) ([]byte, error) // Reads the original document during postprocess
}

// Option is a functional option for configuring a [Processor].
type Option func(*Processor)

// WithLogger sets the logger the processor reports each phase to, by default
// nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithReadFile sets the function used to read the original document during
// postprocessing, by default [os.ReadFile].
func WithReadFile(readFile func(name string) ([]byte, error)) Option {
	return func(p *Processor) {
		if readFile != nil {
			p.readFile = readFile
		}
	}
}

// New returns a new [Processor] for the given dialect.
func New(dialect Dialect, options ...Option) *Processor {
	p := &Processor{
		dialect:  dialect,
		logger:   log.New(io.Discard),
		readFile: os.ReadFile,
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// ForFile returns a [Processor] for the dialect matching the extension of filename,
// ok is false if the extension isn't one we know.
func ForFile(filename string, options ...Option) (p *Processor, ok bool) {
	dialect, ok := DialectFor(filename)
	if !ok {
		return nil, false
	}

	return New(dialect, options...), true
}

// Dialect returns the processor's dialect.
func (p *Processor) Dialect() Dialect {
	return p.dialect
}

// SupportsAutofix reports whether fixes suggested by the linter can be applied to
// the original document. They can, as no line of script is ever moved.
func (p *Processor) SupportsAutofix() bool {
	return true
}

// Analysis is everything the processor works out about a document before rewriting it.
type Analysis struct {
	// Result is the document's tags and bindings.
	Result template.Result

	// Symbols are the declarations of each script region.
	Symbols Symbols

	// Regions are the script regions, in document order.
	Regions []document.Region

	// Syntheses is the code generated for each region, in the same order as Regions.
	Syntheses []Synthesis

	// Trailing are the names declared in the trailing virtual file.
	Trailing []string
}

// Analyze works out what needs to be generated for a document without rewriting it.
func (p *Processor) Analyze(text string) Analysis {
	regions := p.dialect.ExtractRegions(text)
	if len(regions) == 0 {
		return Analysis{}
	}

	result := p.dialect.ScanBindings([]byte(text))
	symbols := p.dialect.ClassifyDeclarations(regions)

	syntheses := make([]Synthesis, 0, len(regions))
	satisfied := make(map[string]bool)

	var deferred []string

	for i := range regions {
		synthesis := p.dialect.Synthesize(i, regions, result, symbols)
		syntheses = append(syntheses, synthesis)

		for _, name := range synthesis.Names() {
			satisfied[name] = true
		}

		// An instance script's own declarations satisfy the name too
		if !regions[i].Module && i < len(symbols.Regions) {
			for _, name := range symbols.Regions[i].Names() {
				satisfied[name] = true
			}
		}

		for _, name := range synthesis.Deferred {
			if !slices.Contains(deferred, name) {
				deferred = append(deferred, name)
			}
		}
	}

	var trailing []string

	for _, name := range deferred {
		if !satisfied[name] && !symbols.Module.Has(name) {
			trailing = append(trailing, name)
		}
	}

	return Analysis{
		Result:    result,
		Symbols:   symbols,
		Regions:   regions,
		Syntheses: syntheses,
		Trailing:  trailing,
	}
}

// Preprocess rewrites a document ready for linting, returning the virtual files to
// lint in its place. The first is always the rewritten document itself, a second
// holding declarations only a module context script needs may follow.
//
// A document without any scripts is returned untouched.
func (p *Processor) Preprocess(text, filename string) []string {
	start := time.Now()
	logger := p.logger.Prefixed("preprocess").With(
		slog.String("file", filename),
		slog.String("dialect", p.dialect.Name()),
	)

	analysis := p.Analyze(text)
	if len(analysis.Regions) == 0 {
		logger.Debug("No script regions, nothing to do")
		return []string{text}
	}

	logger.Debug(
		"Analysed document",
		slog.Int("regions", len(analysis.Regions)),
		slog.Int("bindings", len(analysis.Result.Bindings)),
		slog.Int("tags", len(analysis.Result.Tags)),
	)

	placeholder := p.dialect.Placeholder()

	rewritten := document.Rewrite(text, analysis.Regions, func(i int, region document.Region) string {
		return analysis.Syntheses[i].Line() + script.Neutralize(region.Content, placeholder)
	})

	files := []string{rewritten}
	if block := moduleBlock(analysis.Trailing); block != "" {
		files = append(files, block)
	}

	logger.Debug(
		"Rewrote document",
		slog.Int("files", len(files)),
		slog.Duration("took", time.Since(start)),
	)

	return files
}

// Postprocess turns the messages the linter reported against each virtual file
// returned by [Processor.Preprocess] into a single list of messages about the
// original document.
//
// Nothing is ever dropped. Dialects that remap messages read the original document
// exactly once, if that fails the error is returned as is.
func (p *Processor) Postprocess(messages [][]Message, filename string) ([]Message, error) {
	start := time.Now()
	logger := p.logger.Prefixed("postprocess").With(
		slog.String("file", filename),
		slog.String("dialect", p.dialect.Name()),
	)

	total := 0
	for _, file := range messages {
		total += len(file)
	}

	placeholder := p.dialect.Placeholder()
	flat := make([]Message, 0, total)

	for _, file := range messages {
		for _, message := range file {
			message.Source = script.Restore(message.Source, placeholder)
			flat = append(flat, message)
		}
	}

	load := func() ([]byte, error) {
		logger.Debug("Reading original document")
		return p.readFile(filename)
	}

	if err := p.dialect.Remap(flat, load); err != nil {
		return nil, err
	}

	logger.Debug("Postprocessed messages", slog.Int("messages", len(flat)), slog.Duration("took", time.Since(start)))

	return flat, nil
}
