package processor

import (
	"go.followtheprocess.codes/fruition/internal/syntax"
	"go.followtheprocess.codes/fruition/internal/template"
)

// Remap implements [Dialect].
//
// The original document is always loaded exactly once. Undefined identifier messages
// whose identifier is bound somewhere in the template are moved to the first place in
// the original document it is bound. Anything else, or anything not found, is left
// exactly where it was.
func (Component) Remap(messages []Message, load Loader) error {
	original, err := load()
	if err != nil {
		return err
	}

	var (
		result  template.Result
		scanned bool
	)

	for i := range messages {
		name, ok := messages[i].Undefined()
		if !ok {
			continue
		}

		if !scanned {
			result = template.Scan(original, componentOptions)
			scanned = true
		}

		occurrence, found := result.First(name)
		if !found {
			continue
		}

		pos := syntax.PositionOf("", original, occurrence.Span)

		messages[i].Line = pos.Line
		messages[i].Column = pos.StartCol
		messages[i].EndLine = pos.Line
		messages[i].EndColumn = pos.EndCol
	}

	return nil
}
