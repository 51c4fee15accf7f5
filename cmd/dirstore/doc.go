// Package main is the entry point for the dirstore command line tool.
//
// dirstore inspects and maintains a store root: the directory tree that the
// storage package writes namespaces, JSON documents, NDJSON logs and CSV
// tables into.
//
// Commands:
//   - ls [dir]: list a namespace with sizes
//   - cat <file>: print a file
//   - lines <file>: print a file with line numbers
//   - csv2json <csv> [out]: convert a CSV table into a JSON array
//   - hash <file>: BLAKE3 digest, cached below the temp root
//   - clear [dir]: empty the temp root or one of its sub-namespaces
//
// Paths are relative to the store root and may not leave it.
//
// Configuration:
//   - Environment variables (12-factor), optionally from a dotenv file
//   - CLI flags (override env vars)
//
// Usage:
//
//	dirstore -root /srv/store ls reports
//	dirstore -env .env.local csv2json exports/users.csv
//	METRICS_ENABLED=true dirstore clear cache
package main
