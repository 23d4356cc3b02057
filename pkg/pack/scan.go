package pack

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/terraweave/terraweave/pkg/errors"
)

// DirectoryEntry is one node of the pack file tree shown in editor sidebars.
// Directories sort before files, each group alphabetically.
type DirectoryEntry struct {
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	IsDir    bool              `json:"is_dir"`
	Children []*DirectoryEntry `json:"children,omitempty"`
}

// Scan lists a directory tree recursively. Hidden entries (dotfiles) are
// skipped; everything else is included, JSON or not, so the tree reflects
// what is actually on disk.
func Scan(dir string) ([]*DirectoryEntry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not a directory: %s", dir)
	}
	return scanDir(dir)
}

func scanDir(dir string) ([]*DirectoryEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list %s", dir)
	}

	var out []*DirectoryEntry
	for _, e := range entries {
		if e.Name()[0] == '.' {
			continue
		}
		entry := &DirectoryEntry{
			Name:  e.Name(),
			Path:  filepath.Join(dir, e.Name()),
			IsDir: e.IsDir(),
		}
		if e.IsDir() {
			children, err := scanDir(entry.Path)
			if err != nil {
				return nil, err
			}
			entry.Children = children
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
