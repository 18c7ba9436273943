// Package badger implements the vector index on top of BadgerDB.
//
// Every chunk is stored under a (user, file, chunk id) key, so upserts and
// deletes for one file never scan beyond their own prefix, and similarity
// queries stay scoped to a single user's single file.
package badger
