/*
Package monitoring provides Prometheus metrics for storage operations.

# Overview

Metrics implements storage.Observer. Every namespace and file created with
storage.WithObserver(metrics) reports its filesystem operations here.

# Metrics

  - dirstore_operations_total{op}: completed operations
  - dirstore_errors_total{op}: failed operations
  - dirstore_bytes_total{op}: bytes read or written

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	root := storage.NewDir(".", storage.WithObserver(metrics))

	// Dump in the text exposition format
	monitoring.WriteText(os.Stderr, reg)
*/
package monitoring
