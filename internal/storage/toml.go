package storage

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFile stores one table of type T as TOML. T should be a struct or a map;
// other values are refused on write and null values are dropped.
type TOMLFile[T any] struct {
	*Adaptor
}

// TOMLOf wraps f as a typed TOML file, adding ".toml" when missing.
func TOMLOf[T any](f *File) *TOMLFile[T] {
	return &TOMLFile[T]{Adaptor: newAdaptor(f, ExtTOML)}
}

// TOML wraps the file as an untyped TOML table.
func (f *File) TOML() *TOMLFile[map[string]interface{}] {
	return TOMLOf[map[string]interface{}](f)
}

// Write snapshots v and stores it as a TOML document.
func (t *TOMLFile[T]) Write(v T) error {
	table, ok := dropNulls(t.snapshot(v)).(map[string]interface{})
	if !ok {
		return fmt.Errorf("failed to encode %s: top-level value must be a table, got %T", t.Path(), v)
	}
	data, err := toml.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", t.Path(), err)
	}
	return t.file.Write(data)
}

// Read decodes the stored table. ok is false when the file is missing or empty.
func (t *TOMLFile[T]) Read() (T, bool, error) {
	var out T
	data, ok, err := t.file.ReadBytes()
	if err != nil || !ok || len(data) == 0 {
		return out, false, err
	}
	if err := toml.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode %s: %w", t.Path(), err)
	}
	return out, true, nil
}

// TOML has no null.
func dropNulls(v interface{}) interface{} {
	switch s := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(s))
		for k, val := range s {
			if val == nil {
				continue
			}
			out[k] = dropNulls(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(s))
		for _, val := range s {
			if val != nil {
				out = append(out, dropNulls(val))
			}
		}
		return out
	default:
		return v
	}
}
