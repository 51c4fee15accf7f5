// Package paths provides the standard relative layout of a store root.
//
// Every component that needs a well-known location (the temp root, the
// cache namespace, the log namespace) takes it from here so the on-disk
// layout stays consistent.
//
// # Directory Structure
//
//	./                 (store root, STORE_ROOT)
//	./.temp/           (temp root, clearable)
//	  ├── cache/       (TTL cache entries, one JSON file per key)
//	  └── logs/        (NDJSON log sinks)
//
// # Usage
//
//	import "github.com/GriffinCanCode/dirstore/internal/paths"
//
//	logDir := paths.LogDir(paths.TempRoot) // .temp/logs
//
//	// Validate caller supplied sub-paths
//	if err := paths.ValidateRelative(sub); err != nil {
//	    return err
//	}
package paths
