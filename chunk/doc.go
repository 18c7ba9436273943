// Package chunk splits document text into overlapping, bounded-length
// segments for embedding and indexing.
//
// The Splitter walks an ordered separator hierarchy from coarsest (paragraph
// breaks) to finest (single characters), accumulating parts greedily up to
// the configured size and carrying a small overlap across chunk boundaries so
// that local context survives the split.
package chunk
