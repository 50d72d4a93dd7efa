package fruition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"go.followtheprocess.codes/fruition/internal/format"
	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/hue"
)

// PostprocessOptions are the options passed to the postprocess subcommand.
type PostprocessOptions struct {
	// File is the path to the original document.
	File string

	// Messages is the path to the messages the linter reported against the
	// virtual files, its extension picks the format it's read as.
	Messages string

	// Dialect overrides the dialect picked from the file's extension.
	Dialect string

	// Format is the output format, text or one of the structured formats.
	Format string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the PostprocessOptions is valid, returning a non-nil
// error if it's not.
func (p PostprocessOptions) Validate() error {
	switch {
	case p.File == "":
		return errors.New("the original document is required")
	case p.Messages == "":
		return errors.New("--messages is required")
	}

	if err := validateDialect(p.Dialect); err != nil {
		return err
	}

	return validateFormat(p.Format, slices.Concat([]string{FormatText}, format.Formats()))
}

// Postprocessed is the result of postprocessing the messages for a single document.
type Postprocessed struct {
	// File is the path of the original document.
	File string `json:"file" toml:"file" yaml:"file"`

	// Messages are the messages about the original document.
	Messages []processor.Message `json:"messages" toml:"messages" yaml:"messages"`
}

// Postprocess implements the postprocess subcommand.
func (f Fruition) Postprocess(ctx context.Context, options PostprocessOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}

	logger := f.logger.Prefixed("postprocess").With(slog.String("file", options.File))
	logger.Debug("Postprocess configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	d, err := dialect(options.File, options.Dialect)
	if err != nil {
		return err
	}

	importer, err := format.ImporterForFile(options.Messages)
	if err != nil {
		return err
	}

	start := time.Now()

	input, err := os.Open(options.Messages)
	if err != nil {
		return fmt.Errorf("could not open messages: %w", err)
	}
	defer input.Close()

	messages, err := importer.Import(input)
	if err != nil {
		return fmt.Errorf("could not read messages from %s: %w", options.Messages, err)
	}

	logger.Debug(
		"Read messages",
		slog.String("messages", options.Messages),
		slog.Int("files", len(messages)),
		slog.Duration("took", time.Since(start)),
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	p := processor.New(d, processor.WithLogger(f.logger))

	remapped, err := p.Postprocess(messages, options.File)
	if err != nil {
		return fmt.Errorf("could not postprocess %s: %w", options.File, err)
	}

	result := Postprocessed{
		File:     options.File,
		Messages: remapped,
	}

	if options.Format != FormatText {
		return f.export(options.Format, result)
	}

	f.showMessages(result)

	return nil
}

// showMessages prints one line per message in the familiar file:line:column layout.
func (f Fruition) showMessages(result Postprocessed) {
	for _, message := range result.Messages {
		severity := warningStyle.Text("warning")
		if message.Severity == processor.SeverityError || message.Fatal {
			severity = errorStyle.Text("error")
		}

		fmt.Fprintf(
			f.stdout,
			"%s %s %s %s\n",
			hue.Bold.Text(fmt.Sprintf("%s:%d:%d", result.File, message.Line, message.Column)),
			severity,
			message.Message,
			dimmed.Text(message.RuleID),
		)
	}
}
