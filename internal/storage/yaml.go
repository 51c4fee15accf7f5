package storage

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// YAMLFile stores one value of type T as a YAML document.
type YAMLFile[T any] struct {
	*Adaptor
}

// YAMLOf wraps f as a typed YAML file, adding ".yaml" when missing.
func YAMLOf[T any](f *File) *YAMLFile[T] {
	return &YAMLFile[T]{Adaptor: newAdaptor(f, ExtYAML)}
}

// YAML wraps the file as an untyped YAML file.
func (f *File) YAML() *YAMLFile[interface{}] {
	return YAMLOf[interface{}](f)
}

// Write snapshots v and stores it as YAML.
func (y *YAMLFile[T]) Write(v T) error {
	data, err := yaml.Marshal(y.snapshot(v))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", y.Path(), err)
	}
	return y.file.Write(data)
}

// Read decodes the stored document. ok is false when the file is missing or empty.
func (y *YAMLFile[T]) Read() (T, bool, error) {
	var out T
	data, ok, err := y.file.ReadBytes()
	if err != nil || !ok || len(data) == 0 {
		return out, false, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode %s: %w", y.Path(), err)
	}
	return out, true, nil
}
