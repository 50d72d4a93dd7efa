// Package format provides conversions between fruition's data and the formats a linter
// or a human might want to read and write.
//
// Notably, the package provides the [Importer] and [Exporter] interfaces for doing this
// in a format-agnostic way, and the built in JSON, YAML and TOML implementations.
package format

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.followtheprocess.codes/fruition/internal/processor"
)

// ErrUnknownFormat is returned when asked for a format we don't support.
var ErrUnknownFormat = errors.New("unknown format")

// Format names.
const (
	JSON = "json"
	YAML = "yaml"
	TOML = "toml"
)

// Exporter is the interface defining a mechanism for exporting a value, typically
// a report or the linter configuration, into an external format.
type Exporter interface {
	// Export writes value to w in the exporter's format.
	Export(w io.Writer, value any) error
}

// Importer is the interface defining a mechanism for importing the messages a linter
// reported against each virtual file.
type Importer interface {
	// Import reads one list of messages per virtual file from r.
	Import(r io.Reader) ([][]processor.Message, error)
}

// Formats returns the names of every supported format.
func Formats() []string {
	return []string{JSON, YAML, TOML}
}

// ExporterFor returns the [Exporter] for the named format.
func ExporterFor(name string) (Exporter, error) {
	switch strings.ToLower(name) {
	case JSON:
		return JSONExporter{}, nil
	case YAML, "yml":
		return YAMLExporter{}, nil
	case TOML:
		return TOMLExporter{}, nil
	default:
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, name, Formats())
	}
}

// ImporterFor returns the [Importer] for the named format.
func ImporterFor(name string) (Importer, error) {
	switch strings.ToLower(name) {
	case JSON:
		return JSONImporter{}, nil
	case YAML, "yml":
		return YAMLImporter{}, nil
	case TOML:
		return TOMLImporter{}, nil
	default:
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, name, Formats())
	}
}

// ImporterForFile returns the [Importer] matching the extension of path.
func ImporterForFile(path string) (Importer, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}

	return ImporterFor(ext)
}
