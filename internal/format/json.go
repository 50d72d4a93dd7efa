package format

import (
	"encoding/json"
	"fmt"
	"io"

	"go.followtheprocess.codes/fruition/internal/processor"
)

// JSONExporter is an [Exporter] that writes values as indented JSON documents.
type JSONExporter struct{}

// Export implements [Exporter] for [JSONExporter] and exports the given value
// as a complete JSON document.
func (j JSONExporter) Export(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(value)
}

// JSONImporter is an [Importer] that reads messages from a JSON array holding
// one array of messages per virtual file, the shape the linter hands a processor.
type JSONImporter struct{}

// Import implements [Importer] for [JSONImporter].
func (j JSONImporter) Import(r io.Reader) ([][]processor.Message, error) {
	var messages [][]processor.Message

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&messages); err != nil {
		return nil, fmt.Errorf("could not decode JSON: %w", err)
	}

	return messages, nil
}
