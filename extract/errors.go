package extract

import "errors"

// ErrUnreadable indicates the stored file could not be read at all.
var ErrUnreadable = errors.New("unreadable file")
