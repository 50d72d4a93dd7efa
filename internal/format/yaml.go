package format

import (
	"errors"
	"fmt"
	"io"

	"go.followtheprocess.codes/fruition/internal/processor"
	"go.yaml.in/yaml/v4"
)

const yamlIndent = 2

// YAMLExporter is an [Exporter] that writes values as YAML documents.
type YAMLExporter struct{}

// Export implements [Exporter] for [YAMLExporter] and exports the given value as
// a complete YAML document.
func (y YAMLExporter) Export(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(value); err != nil {
		return err
	}

	return encoder.Close()
}

// YAMLImporter is an [Importer] that reads messages from a YAML sequence holding
// one sequence of messages per virtual file.
type YAMLImporter struct{}

// Import implements [Importer] for [YAMLImporter].
func (y YAMLImporter) Import(r io.Reader) ([][]processor.Message, error) {
	var messages [][]processor.Message

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&messages); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document, nothing was reported
			return nil, nil
		}

		return nil, fmt.Errorf("could not decode YAML: %w", err)
	}

	return messages, nil
}
