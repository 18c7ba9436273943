// Package index defines the vector index contract: chunk embeddings stored
// per user and file, queried by cosine similarity. index/badger provides an
// embedded implementation.
package index
