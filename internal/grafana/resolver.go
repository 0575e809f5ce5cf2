package grafana

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is returned when a folder's parent chain revisits a folder.
var ErrCycleDetected = errors.New("folder cycle detected")

// PathResolver turns a folder UID into the folder titles from the root down.
// It is built once from the full folder listing and never mutated afterwards.
type PathResolver struct {
	folders map[string]Folder
}

// NewPathResolver indexes folders by UID. Later duplicates win.
func NewPathResolver(folders []Folder) *PathResolver {
	m := make(map[string]Folder, len(folders))
	for _, f := range folders {
		m[f.UID] = f
	}
	return &PathResolver{folders: m}
}

// Resolve walks the parent chain starting at folderUID and returns the
// titles ordered root first, ending with the title of folderUID itself.
// An empty folderUID means root level and yields an empty path.
//
// A parent UID that is not in the listing ends the walk, so an orphaned
// subtree resolves as if it hung directly off the root.
func (r *PathResolver) Resolve(folderUID string) ([]string, error) {
	var parts []string
	seen := make(map[string]struct{})

	current := folderUID
	for current != "" {
		f, ok := r.folders[current]
		if !ok {
			break
		}
		if _, dup := seen[current]; dup {
			return nil, fmt.Errorf("%w: folder %q revisited while resolving %q", ErrCycleDetected, current, folderUID)
		}
		seen[current] = struct{}{}

		parts = append(parts, f.Title)
		current = f.ParentUID
	}

	// collected leaf first
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	if parts == nil {
		parts = []string{}
	}
	return parts, nil
}

// Len reports how many folders the resolver knows about.
func (r *PathResolver) Len() int {
	return len(r.folders)
}
