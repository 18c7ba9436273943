// Package server is the HTTP surface: upload, listing, status, retrieval,
// delete, chunked upload sessions and per-file semantic query, plus
// health and Prometheus metrics endpoints.
package server
