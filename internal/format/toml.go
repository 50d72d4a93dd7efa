package format

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"go.followtheprocess.codes/fruition/internal/processor"
)

// TOMLExporter is an [Exporter] that writes values as TOML documents.
//
// TOML documents are always a table at the top level, so value must be a struct
// or a map.
type TOMLExporter struct{}

// Export implements [Exporter] for [TOMLExporter] and exports the given value
// as a complete TOML document.
func (t TOMLExporter) Export(w io.Writer, value any) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = ""

	return encoder.Encode(value)
}

// tomlMessages is the layout of a TOML messages document, one [[files]] table
// per virtual file each holding its [[files.messages]].
type tomlMessages struct {
	Files []struct {
		Messages []processor.Message `toml:"messages"`
	} `toml:"files"`
}

// TOMLImporter is an [Importer] that reads messages from a TOML document.
type TOMLImporter struct{}

// Import implements [Importer] for [TOMLImporter].
func (t TOMLImporter) Import(r io.Reader) ([][]processor.Message, error) {
	var document tomlMessages

	meta, err := toml.NewDecoder(r).Decode(&document)
	if err != nil {
		return nil, fmt.Errorf("could not decode TOML: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("could not decode TOML: unknown keys %v", undecoded)
	}

	messages := make([][]processor.Message, 0, len(document.Files))
	for _, file := range document.Files {
		messages = append(messages, file.Messages)
	}

	return messages, nil
}
