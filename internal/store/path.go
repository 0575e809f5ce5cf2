package store

import (
	"path/filepath"
	"strings"
)

// fileNameReplacer strips the characters the exporter has always removed
// from dashboard titles.
var fileNameReplacer = strings.NewReplacer(" ", "", "/", "", ":", "")

// FileName returns the on-disk name for a dashboard titled title.
// Spaces, '/' and ':' are removed and ".json" appended. When nothing is left
// the fallback (normally the dashboard UID) is used instead.
//
// Existing backups depend on this mapping, so it must stay stable.
func FileName(title, fallback string) string {
	name := fileNameReplacer.Replace(title)
	if name == "" || name == "." || name == ".." {
		name = fileNameReplacer.Replace(fallback)
	}
	return name + ".json"
}

// CollisionName is the file name used when FileName(title) was already taken.
func CollisionName(title, uid string) string {
	base := strings.TrimSuffix(FileName(title, uid), ".json")
	return base + "-" + fileNameReplacer.Replace(uid) + ".json"
}

// Segment makes a folder title safe to use as one directory name. Only '/'
// is replaced; whitespace is kept so paths match earlier backups.
func Segment(title string) string {
	s := strings.ReplaceAll(title, "/", "-")
	switch s {
	case "":
		return "_"
	case ".", "..":
		return strings.Repeat("_", len(s))
	}
	return s
}

// DirPath joins root and the sanitized folder titles.
func DirPath(root string, folders []string) string {
	parts := make([]string, 0, len(folders)+1)
	parts = append(parts, root)
	for _, f := range folders {
		parts = append(parts, Segment(f))
	}
	return filepath.Join(parts...)
}
