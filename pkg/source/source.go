// Package source provides the immutable file-tree snapshot the engine
// analyzes. Content is fully materialized up front so the analyzers never
// perform blocking I/O and every run over the same tree is reproducible.
package source

import (
	"fmt"
	"sort"
)

// File is one entry of a tree: a relative path and its raw content.
type File struct {
	Path    string
	Content []byte
}

// ContentSource provides file content by path.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// Tree is an immutable snapshot of files keyed by relative path. Paths are
// held in sorted order so iteration is deterministic regardless of how the
// tree was assembled. The zero value is an empty tree.
type Tree struct {
	files []File
	index map[string]int
	bytes int64
}

// NewTree builds a tree from files. Paths are sorted; on duplicate paths
// the last entry wins.
func NewTree(files []File) *Tree {
	byPath := make(map[string]File, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}
	sorted := make([]File, 0, len(byPath))
	for _, f := range byPath {
		sorted = append(sorted, f)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	t := &Tree{
		files: sorted,
		index: make(map[string]int, len(sorted)),
	}
	for i, f := range sorted {
		t.index[f.Path] = i
		t.bytes += int64(len(f.Content))
	}
	return t
}

// FromMap builds a tree from a path to content map. Convenient for tests
// and for callers that assemble trees programmatically.
func FromMap(files map[string]string) *Tree {
	list := make([]File, 0, len(files))
	for path, content := range files {
		list = append(list, File{Path: path, Content: []byte(content)})
	}
	return NewTree(list)
}

// Len returns the number of files.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.files)
}

// TotalBytes returns the summed content size.
func (t *Tree) TotalBytes() int64 {
	if t == nil {
		return 0
	}
	return t.bytes
}

// Files returns the files in path order. Callers must not mutate the
// returned slice or the content it references.
func (t *Tree) Files() []File {
	if t == nil {
		return nil
	}
	return t.files
}

// Paths returns all paths in sorted order.
func (t *Tree) Paths() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.files))
	for i, f := range t.files {
		out[i] = f.Path
	}
	return out
}

// Read implements ContentSource.
func (t *Tree) Read(path string) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("read %s: nil tree", path)
	}
	i, ok := t.index[path]
	if !ok {
		return nil, fmt.Errorf("read %s: not in tree", path)
	}
	return t.files[i].Content, nil
}
