// Package jsonline encodes machine-readable output lines. One value per
// line, no HTML escaping, trailing newline included.
package jsonline

import (
	"bytes"
	"encoding/json"
	"io"
)

// Encode renders v as a single JSON line.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders v and writes the line to w.
func Write(w io.Writer, v any) error {
	b, err := Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
