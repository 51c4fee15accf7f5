/*
Package storage provides a local, file-backed storage layer.

# Overview

The package is organized into three layers:
  - Namespace: a lazily materialized directory handle that hands out File
    handles and child namespaces
  - File: a thin wrapper over one path (read, write, append, streams)
  - Codecs: JSON, NDJSON, CSV, YAML and TOML adaptors over a File

All structured writes go through the snapshot package first, so errors, maps
and sync.Map values keep their contents when encoded.

# Namespaces

Namespace[D] is generic over the concrete namespace type it produces. The
plain type is Dir. Extensions embed a *Namespace of themselves and pass their
constructor once; Dir and TempDir then keep returning the extension type at
any depth:

	type Reports struct{ *storage.Namespace[Reports] }

	func NewReports(path string) Reports {
		return storage.New(path, func(n *storage.Namespace[Reports]) Reports {
			return Reports{n}
		})
	}

	daily, _ := NewReports("reports").Dir("daily") // daily is a Reports

A namespace touches the filesystem only when its path is first needed. The
directory is then created once (MkdirAll). Clear is only allowed on temp
namespaces, and the temp flag propagates to every child.

# Files and codecs

	root := storage.NewTemp("")
	sub, _ := root.Dir("a/b")
	doc := sub.File("x").JSON()      // .../a/b/x.json
	_ = doc.Write(map[string]int{"n": 1})
	v, ok, _ := doc.Read()           // ok is false when the file is missing

Absence is never an error: Read reports ok=false, Lines and CSV Read return
empty slices. Malformed content and filesystem errors propagate.

Glob (doublestar patterns such as "**" plus "/*.json") and Walk enumerate the files below a namespace. Walk uses
fastwalk on the OS filesystem and afero.Walk on any other backend.

# Backends

Every handle works against an afero.Fs. The default is the OS filesystem;
WithFs switches to any other implementation (afero.NewMemMapFs in tests).
*/
package storage
