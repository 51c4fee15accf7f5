/*
Package snapshot converts arbitrary Go values into plain, JSON-safe data.

# Overview

Snapshot walks a value with reflection and rebuilds it from a small closed set
of shapes: nil, bool, numbers, strings, []interface{} and
map[string]interface{}. The result can always be handed to encoding/json (or
any of the storage codecs) without losing the fields that encoding/json would
normally skip.

# Rules

Rules are applied in this order:

  - Interfaces and pointers are unwrapped; nil becomes nil.
  - Values that define their own encoding (json.Marshaler,
    encoding.TextMarshaler) are captured through that encoding.
  - Slices and arrays map every element. At the depth limit they become an
    empty slice.
  - Funcs, channels and unsafe pointers are dropped. Records omit them and
    sequences hold nil in their place.
  - Primitives pass through unchanged. NaN and infinities become nil.
  - Any remaining value at the depth limit becomes an empty record.
  - Maps and Range(func(k, v interface{}) bool) containers such as sync.Map
    are flattened into a record keyed by the text of each key.
  - Structs contribute exported fields (json tag names honored, embedded
    structs flattened) and unexported fields by their Go name. Errors add
    message, type, stack and cause.

# Cycles

There is no visited set. Traversal stops at a fixed depth (DefaultMaxDepth),
so self-referential graphs terminate and come out as truncated trees. Two
different cyclic graphs may truncate to the same output.

The cost grows with the number of paths, not the number of values: a node
that refers to itself through k fields expands into k^depth branches, so
graphs like that should go through Depth with a small limit.

Methods promoted from a nil embedded pointer or interface can panic. Such a
value is treated as having no encoding of its own and is captured field by
field.

# Usage

	plain := snapshot.Of(err)
	data, _ := json.Marshal(plain) // includes "message", "type", "cause"

	shallow := snapshot.Depth(graph, 5)
*/
package snapshot
