package watch

import "path/filepath"

// editorNoise matches the swap and backup files editors write next to the
// file being saved.
var editorNoise = []string{"*~", ".*.swp", ".*.swx", "*.tmp", "4913"}

// NameFilter selects events for a fixed set of file names in a directory.
type NameFilter struct {
	names   map[string]bool
	exclude []string
}

// NewNameFilter accepts events whose base name is one of names.
func NewNameFilter(names ...string) *NameFilter {
	f := &NameFilter{names: make(map[string]bool, len(names)), exclude: editorNoise}
	for _, n := range names {
		f.names[filepath.Base(n)] = true
	}
	return f
}

// Matches reports whether path names a watched file.
func (f *NameFilter) Matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range f.exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return f.names[base]
}
