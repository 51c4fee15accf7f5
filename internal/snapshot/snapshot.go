package snapshot

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// DefaultMaxDepth bounds traversal for Of.
const DefaultMaxDepth = 50

// Ranger is implemented by containers that enumerate key/value pairs (sync.Map).
type Ranger interface {
	Range(f func(key, value interface{}) bool)
}

var (
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	rangerType        = reflect.TypeOf((*Ranger)(nil)).Elem()
)

// Of snapshots v with DefaultMaxDepth.
func Of(v interface{}) interface{} {
	return Depth(v, DefaultMaxDepth)
}

// Depth snapshots v, truncating anything nested deeper than maxDepth.
func Depth(v interface{}, maxDepth int) interface{} {
	out, _ := visit(reflect.ValueOf(v), maxDepth, 0)
	return out
}

// visit returns the plain form of rv and whether it is present at all.
// Absent values (funcs, channels) are omitted by the caller.
func visit(rv reflect.Value, maxDepth, depth int) (interface{}, bool) {
	rv, ok := indirect(rv, maxDepth)
	if !ok || !rv.IsValid() {
		return nil, true
	}

	if out, ok := encoded(rv); ok {
		return out, true
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true
		}
		if depth >= maxDepth {
			return []interface{}{}, true
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i], _ = visit(rv.Index(i), maxDepth, depth+1)
		}
		return out, true

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, false
	}

	if out, ok := primitive(rv); ok {
		return out, true
	}

	if rv.Kind() == reflect.Map && rv.IsNil() {
		return nil, true
	}

	if depth >= maxDepth {
		return map[string]interface{}{}, true
	}

	if rv.Kind() == reflect.Map {
		return pairs(rv, maxDepth, depth), true
	}
	if rv.CanInterface() && rv.Type().Implements(rangerType) {
		if out, ok := ranged(rv.Interface().(Ranger), maxDepth, depth); ok {
			return out, true
		}
	}

	return record(rv, maxDepth, depth), true
}

// indirect unwraps interfaces and pointers. It stops early at a pointer whose
// method set matters (errors, marshalers, rangers) so pointer receivers keep
// working. The bool is false for nil.
func indirect(rv reflect.Value, maxDepth int) (reflect.Value, bool) {
	for hops := 0; hops <= maxDepth; hops++ {
		switch rv.Kind() {
		case reflect.Interface:
			if rv.IsNil() {
				return rv, false
			}
			rv = rv.Elem()
		case reflect.Pointer:
			if rv.IsNil() {
				return rv, false
			}
			if special(rv) {
				return rv, true
			}
			rv = rv.Elem()
		default:
			return rv, true
		}
	}
	return rv, true
}

func special(rv reflect.Value) bool {
	if !rv.CanInterface() {
		return false
	}
	t := rv.Type()
	return t.Implements(errorType) ||
		t.Implements(jsonMarshalerType) ||
		t.Implements(textMarshalerType) ||
		t.Implements(rangerType)
}

// encoded captures values that already know how to encode themselves.
func encoded(rv reflect.Value) (interface{}, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	switch m := rv.Interface().(type) {
	case json.Marshaler:
		var data []byte
		var err error
		if !guarded(func() { data, err = m.MarshalJSON() }) || err != nil {
			return nil, false
		}
		var out interface{}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	case encoding.TextMarshaler:
		if text, ok := marshalText(m); ok {
			return text, true
		}
	}
	return nil, false
}

// guarded runs call and reports whether it returned normally. Methods promoted
// from a nil embedded pointer or interface panic when called.
func guarded(call func()) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	call()
	return true
}

func marshalText(m encoding.TextMarshaler) (string, bool) {
	var text []byte
	var err error
	if !guarded(func() { text, err = m.MarshalText() }) || err != nil {
		return "", false
	}
	return string(text), true
}

func primitive(rv reflect.Value) (interface{}, bool) {
	switch rv.Kind() {
	case reflect.Bool:
		if rv.CanInterface() {
			return rv.Interface(), true
		}
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.CanInterface() {
			return rv.Interface(), true
		}
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.CanInterface() {
			return rv.Interface(), true
		}
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true
		}
		if rv.CanInterface() {
			return rv.Interface(), true
		}
		return f, true
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Complex()), true
	case reflect.String:
		if rv.CanInterface() {
			return rv.Interface(), true
		}
		return rv.String(), true
	}
	return nil, false
}

func pairs(rv reflect.Value, maxDepth, depth int) map[string]interface{} {
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		v, ok := visit(iter.Value(), maxDepth, depth+1)
		if !ok {
			continue
		}
		out[keyText(iter.Key())] = v
	}
	return out
}

func ranged(r Ranger, maxDepth, depth int) (map[string]interface{}, bool) {
	out := make(map[string]interface{})
	ok := guarded(func() {
		r.Range(func(key, value interface{}) bool {
			if v, ok := visit(reflect.ValueOf(value), maxDepth, depth+1); ok {
				out[keyText(reflect.ValueOf(key))] = v
			}
			return true
		})
	})
	return out, ok
}

func keyText(k reflect.Value) string {
	if !k.IsValid() {
		return "<nil>"
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if text, ok := marshalText(tm); ok {
				return text
			}
		}
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k)
}

// record captures structs field by field and adds the error view when rv is an error.
func record(rv reflect.Value, maxDepth, depth int) map[string]interface{} {
	out := make(map[string]interface{})

	var err error
	if rv.CanInterface() {
		err, _ = rv.Interface().(error)
	}

	base := rv
	for hops := 0; base.Kind() == reflect.Pointer && hops < maxDepth; hops++ {
		if base.IsNil() {
			break
		}
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		fields(base, out, maxDepth, depth)
	}

	if err != nil {
		errorFields(err, out, maxDepth, depth)
	}
	return out
}

// fields copies struct fields into out. Direct fields win over promoted ones.
func fields(rv reflect.Value, out map[string]interface{}, maxDepth, depth int) {
	t := rv.Type()
	var embedded []reflect.Value

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := rv.Field(i)

		name := sf.Name
		tagged := false
		if sf.IsExported() {
			if tag, ok := sf.Tag.Lookup("json"); ok {
				if tag == "-" {
					continue
				}
				if tagName, _, _ := strings.Cut(tag, ","); tagName != "" {
					name = tagName
					tagged = true
				}
			}
		}

		if sf.Anonymous && !tagged {
			if inner, ok := flattenable(fv, maxDepth); ok {
				embedded = append(embedded, inner)
				continue
			}
		}

		v, ok := visit(fv, maxDepth, depth+1)
		if !ok {
			continue
		}
		out[name] = v
	}

	if depth+1 >= maxDepth {
		return
	}
	for _, inner := range embedded {
		promoted := make(map[string]interface{})
		fields(inner, promoted, maxDepth, depth+1)
		for k, v := range promoted {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
}

// flattenable reports whether an embedded field should have its fields promoted.
func flattenable(fv reflect.Value, maxDepth int) (reflect.Value, bool) {
	if fv.Kind() == reflect.Pointer && special(fv) {
		return fv, false
	}
	inner, ok := indirect(fv, maxDepth)
	if !ok || inner.Kind() != reflect.Struct || special(inner) {
		return fv, false
	}
	return inner, true
}

// errorFields adds the error view. An error whose Error method panics is
// left as a plain record.
func errorFields(err error, out map[string]interface{}, maxDepth, depth int) {
	var message string
	if !guarded(func() { message = err.Error() }) {
		return
	}
	out["message"] = message
	setDefault(out, "type", fmt.Sprintf("%T", err))

	if stack := fmt.Sprintf("%+v", err); stack != message {
		setDefault(out, "stack", stack)
	}

	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var errs []error
		if !guarded(func() { errs = u.Unwrap() }) {
			return
		}
		causes := make([]interface{}, 0, len(errs))
		for _, e := range errs {
			v, _ := visit(reflect.ValueOf(e), maxDepth, depth+2)
			causes = append(causes, v)
		}
		setDefault(out, "causes", causes)
	case interface{ Unwrap() error }:
		var cause error
		if guarded(func() { cause = u.Unwrap() }) && cause != nil {
			v, _ := visit(reflect.ValueOf(cause), maxDepth, depth+1)
			setDefault(out, "cause", v)
		}
	}
}

func setDefault(out map[string]interface{}, key string, v interface{}) {
	if _, exists := out[key]; !exists {
		out[key] = v
	}
}
