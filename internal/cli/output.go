package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// field is one labelled value in text output.
type field struct {
	label string
	value any
}

// render writes v as indented JSON, or fields as aligned "label: value" lines.
func render(w io.Writer, format string, v any, fields []field) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	width := 0
	for _, f := range fields {
		if len(f.label) > width {
			width = len(f.label)
		}
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%-*s  %v\n", width+1, f.label+":", f.value); err != nil {
			return err
		}
	}
	return nil
}
