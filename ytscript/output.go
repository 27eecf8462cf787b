package main

import (
	"encoding/json"
	"io"

	"github.com/creachadair/atomicfile"
)

// writeJSON encodes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCompactJSON encodes v as single-line JSON to w.
func writeCompactJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeResult writes v as indented JSON to the file at path, replacing it
// atomically, or to w if path == "".
func writeResult(w io.Writer, path string, v any) error {
	if path == "" {
		return writeJSON(w, v)
	}
	f, err := atomicfile.New(path, 0644)
	if err != nil {
		return err
	}
	defer f.Cancel()
	if err := writeJSON(f, v); err != nil {
		return err
	}
	return f.Close()
}
