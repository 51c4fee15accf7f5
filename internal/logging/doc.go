// Package logging provides structured logging using uber/zap.
//
// This package offers two console modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Either mode can additionally tee every entry, JSON encoded, into an NDJSON
// file of a store. The file is written through storage.File.Append, so it is
// created on the first entry together with its parent directories.
//
// Example Usage:
//
//	tmp := storage.NewTemp("")
//	logs, _ := tmp.Dir(paths.Logs)
//
//	logger, err := logging.New(logging.Config{
//		Level: "info",
//		File:  logs.File("dirstore"),
//	})
//	logger.Info("store opened", zap.String("root", root.Path()))
//	logger.Info("loaded", logging.Any("entry", value))
package logging
