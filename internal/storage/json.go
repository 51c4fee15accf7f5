package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONFile stores one value of type T as indented JSON.
type JSONFile[T any] struct {
	*Adaptor
}

// JSONOf wraps f as a typed JSON file, adding ".json" when missing.
func JSONOf[T any](f *File) *JSONFile[T] {
	return &JSONFile[T]{Adaptor: newAdaptor(f, ExtJSON)}
}

// JSON wraps the file as an untyped JSON file.
func (f *File) JSON() *JSONFile[interface{}] {
	return JSONOf[interface{}](f)
}

// Write snapshots v and stores it with two-space indentation.
func (j *JSONFile[T]) Write(v T) error {
	data, err := encodeIndented(j.snapshot(v))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", j.Path(), err)
	}
	return j.file.Write(data)
}

// Read decodes the stored value. ok is false when the file is missing or empty.
func (j *JSONFile[T]) Read() (T, bool, error) {
	var out T
	data, ok, err := j.file.ReadBytes()
	if err != nil || !ok || len(data) == 0 {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode %s: %w", j.Path(), err)
	}
	return out, true, nil
}

func encodeIndented(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
