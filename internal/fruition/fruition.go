// Package fruition implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package fruition

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"go.followtheprocess.codes/fruition/internal/format"
	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
)

// ErrUnknownDialect is returned when the dialect of a document can't be determined.
var ErrUnknownDialect = errors.New("unknown dialect")

// FormatText is the default human readable output format.
const FormatText = "text"

// Styles.
const (
	// dimmed is the style used for informational content like dialect names
	// and rule ids.
	dimmed = hue.BrightBlack | hue.Italic

	// keyStyle is the style used for binding keys and symbol names.
	keyStyle = hue.Cyan

	// errorStyle is the style used for error severity messages.
	errorStyle = hue.Red | hue.Bold

	// warningStyle is the style used for warning severity messages.
	warningStyle = hue.Yellow | hue.Bold
)

// Fruition represents the fruition program.
type Fruition struct {
	stdout io.Writer   // Normal program output is written here
	stderr io.Writer   // Logs and errors are written here
	logger *log.Logger // The logger for the application
}

// New returns a new [Fruition].
func New(debug bool, stdout, stderr io.Writer) Fruition {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(stderr, log.Prefix("fruition"), log.WithLevel(level))

	return Fruition{
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// dialect resolves the dialect to use for file, an explicit name always wins over
// the file's extension.
func dialect(file, name string) (processor.Dialect, error) {
	if name != "" {
		d, ok := processor.DialectNamed(name)
		if !ok {
			return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownDialect, name, processor.Dialects())
		}

		return d, nil
	}

	d, ok := processor.DialectFor(file)
	if !ok {
		return nil, fmt.Errorf("%w: can't tell the dialect of %s from its extension, pass --dialect", ErrUnknownDialect, file)
	}

	return d, nil
}

// validateDialect reports whether name is empty or a known dialect.
func validateDialect(name string) error {
	if name == "" {
		return nil
	}

	if _, ok := processor.DialectNamed(name); !ok {
		return fmt.Errorf("invalid option for --dialect %q, allowed values are %v", name, processor.Dialects())
	}

	return nil
}

// validateFormat reports whether name is one of the allowed output formats.
func validateFormat(name string, allowed []string) error {
	if !slices.Contains(allowed, name) {
		return fmt.Errorf("invalid option for --format %q, allowed values are %v", name, allowed)
	}

	return nil
}

// export writes value to the program's stdout in the named structured format.
func (f Fruition) export(name string, value any) error {
	exporter, err := format.ExporterFor(name)
	if err != nil {
		return err
	}

	if err := exporter.Export(f.stdout, value); err != nil {
		return fmt.Errorf("could not export %s: %w", name, err)
	}

	return nil
}
