// Package server implements the HTTP server using Echo framework.
//
// Routes: amplification triggers (/timeline, /search, /trend), health probes,
// Prometheus metrics, and version info. Trigger handlers always acknowledge
// with a run summary; operators read failures from logs and metrics.
package server
