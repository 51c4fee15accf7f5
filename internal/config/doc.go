// Package config provides 12-factor configuration management for dirstore.
//
// Configuration is loaded from environment variables with sensible defaults.
// Optional dotenv files are read first; variables already present in the
// environment always win over values from a file.
//
// Configuration Sections:
//   - Storage: store root, temp root, snapshot depth
//   - Logging: log level, output format and optional NDJSON log file
//   - Cache: TTL and directory of the file cache below the temp root
//   - Metrics: Prometheus instrumentation of storage operations
//
// Example Usage:
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//		return err
//	}
//	root := storage.NewDir(cfg.Storage.Root)
//
// Environment Variables:
//   - STORE_ROOT, STORE_TEMP_ROOT, SNAPSHOT_MAX_DEPTH
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
//   - CACHE_TTL, CACHE_DIR
//   - METRICS_ENABLED
package config
