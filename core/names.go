package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const maxBaseNameLen = 100

var (
	unsafeChars        = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	repeatedUnderscore = regexp.MustCompile(`_+`)
)

// SanitizeFilename rewrites a user-supplied filename into a form that is safe
// to use on disk. Path components are stripped to prevent traversal, reserved
// characters become underscores, the base name is capped at 100 runes and the
// extension is lowercased. An unusable input falls back to a timestamped name.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed_file"
	}

	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	// Strip directories; the client does not get to choose where we write.
	name = filepath.Base(name)

	name = unsafeChars.ReplaceAllString(name, "_")
	name = repeatedUnderscore.ReplaceAllString(name, "_")
	name = strings.Trim(name, " ._")

	if runes := []rune(name); len(runes) > maxBaseNameLen {
		name = string(runes[:maxBaseNameLen])
	}

	safe := name + strings.ToLower(ext)
	if safe == "" || strings.HasPrefix(safe, ".") {
		safe = fmt.Sprintf("file_%d%s", time.Now().Unix(), strings.ToLower(ext))
	}
	return safe
}

// StoredName derives the collision-resistant on-disk name for a file:
// the file id joined to the sanitized original name.
func StoredName(fileID, originalName string) string {
	return fileID + "__" + SanitizeFilename(originalName)
}
