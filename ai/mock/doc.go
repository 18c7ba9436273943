// Package mock provides test doubles for the ai package interfaces.
// The mock embedder is deterministic, requires no network, and records its
// calls for assertions.
package mock
