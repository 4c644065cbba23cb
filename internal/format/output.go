// Package format renders scriptable command output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Envelope wraps every successful command result.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope carries field-scoped validation errors keyed by input id.
type ErrorEnvelope struct {
	Errors map[string]string `json:"errors"`
}

// Formats lists the accepted values of Write's format argument.
var Formats = []string{"json", "edn"}

// Write encodes v as json (the default) or edn.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
