// Package ingestion turns uploaded files into searchable vector entries.
//
// Jobs run asynchronously on a bounded worker pool. Each job extracts
// the file's text, splits it into overlapping chunks, embeds every
// chunk and writes the result to the vector index, updating the file's
// metadata record as it goes. Failures never surface to the submitter;
// they are stamped on the record's error field with the stage that
// produced them.
package ingestion
