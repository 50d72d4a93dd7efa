package fruition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"go.followtheprocess.codes/fruition/internal/format"
	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/hue"
)

// PreprocessOptions are the options passed to the preprocess subcommand.
type PreprocessOptions struct {
	// File is the path to the document to preprocess.
	File string

	// Dialect overrides the dialect picked from the file's extension.
	Dialect string

	// Format is the output format, text or one of the structured formats.
	Format string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the PreprocessOptions is valid, returning a non-nil
// error if it's not.
func (p PreprocessOptions) Validate() error {
	if p.File == "" {
		return errors.New("a file to preprocess is required")
	}

	if err := validateDialect(p.Dialect); err != nil {
		return err
	}

	return validateFormat(p.Format, slices.Concat([]string{FormatText}, format.Formats()))
}

// Preprocessed is the result of preprocessing a single document.
type Preprocessed struct {
	// File is the path of the original document.
	File string `json:"file" toml:"file" yaml:"file"`

	// Dialect is the name of the dialect the document was processed as.
	Dialect string `json:"dialect" toml:"dialect" yaml:"dialect"`

	// Files are the virtual files to lint in place of the document.
	Files []string `json:"files" toml:"files" yaml:"files"`
}

// Preprocess implements the preprocess subcommand.
func (f Fruition) Preprocess(ctx context.Context, options PreprocessOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}

	logger := f.logger.Prefixed("preprocess").With(slog.String("file", options.File))
	logger.Debug("Preprocess configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	d, err := dialect(options.File, options.Dialect)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(options.File)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", options.File, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p := processor.New(d, processor.WithLogger(f.logger))
	files := p.Preprocess(string(text), options.File)

	logger.Debug("Preprocessed document", slog.String("dialect", d.Name()), slog.Int("files", len(files)))

	result := Preprocessed{
		File:    options.File,
		Dialect: d.Name(),
		Files:   files,
	}

	if options.Format != FormatText {
		return f.export(options.Format, result)
	}

	f.showPreprocessed(result)

	return nil
}

// showPreprocessed prints each virtual file under a header naming it.
func (f Fruition) showPreprocessed(result Preprocessed) {
	for i, file := range result.Files {
		if i > 0 {
			fmt.Fprintln(f.stdout)
		}

		fmt.Fprintf(
			f.stdout,
			"%s %s\n",
			hue.Bold.Text(fmt.Sprintf("%s[%d]", result.File, i)),
			dimmed.Text("("+result.Dialect+")"),
		)

		fmt.Fprint(f.stdout, file)

		if !strings.HasSuffix(file, "\n") {
			fmt.Fprintln(f.stdout)
		}
	}
}
