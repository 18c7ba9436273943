package badger

// Key layout: chunk:<user>\x00<file>\x00<chunkID>. The NUL separators keep
// one user's prefix from matching another user whose id happens to extend it.
const chunkPrefix = "chunk:"

func filePrefix(userID, fileID string) []byte {
	buf := make([]byte, 0, len(chunkPrefix)+len(userID)+len(fileID)+2)
	buf = append(buf, chunkPrefix...)
	buf = append(buf, userID...)
	buf = append(buf, 0)
	buf = append(buf, fileID...)
	buf = append(buf, 0)
	return buf
}

func chunkKey(userID, fileID, chunkID string) []byte {
	return append(filePrefix(userID, fileID), chunkID...)
}
