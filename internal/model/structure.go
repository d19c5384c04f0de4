package model

import (
	"sort"
	"strings"
)

// NodeType distinguishes folders from files in a FileStructure.
type NodeType string

const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

// FileStructure maps a name to a folder or file node.
type FileStructure map[string]Node

// Node is either a folder (Children set) or a file (Path and TestCases set).
type Node struct {
	Type      NodeType      `json:"type" yaml:"type"`
	Children  FileStructure `json:"children,omitempty" yaml:"children,omitempty"`
	Path      string        `json:"path,omitempty" yaml:"path,omitempty"`
	TestCases []string      `json:"test_cases,omitempty" yaml:"test_cases,omitempty"`
}

// IsFolder returns true if the node is a folder.
func (n Node) IsFolder() bool {
	return n.Type == NodeFolder
}

// SortedNames returns the keys of fs with folders first, then by name.
func (fs FileStructure) SortedNames() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := fs[names[i]], fs[names[j]]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Files returns every file node in the structure, keyed by path.
// A path reported by more than one node maps to the first one found and is
// also returned in dups.
func (fs FileStructure) Files() (files map[string]Node, dups []string) {
	files = make(map[string]Node)
	var walk func(FileStructure)
	walk = func(level FileStructure) {
		for _, name := range level.SortedNames() {
			n := level[name]
			if n.IsFolder() {
				walk(n.Children)
				continue
			}
			if _, seen := files[n.Path]; seen {
				dups = append(dups, n.Path)
				continue
			}
			files[n.Path] = n
		}
	}
	walk(fs)
	return files, dups
}

// FindFile returns the file node with the given path.
func (fs FileStructure) FindFile(path string) (Node, bool) {
	files, _ := fs.Files()
	n, ok := files[path]
	return n, ok
}

// Folders returns the slash-joined path of every folder, in tree order.
func (fs FileStructure) Folders() []string {
	var out []string
	var walk func(FileStructure, string)
	walk = func(level FileStructure, prefix string) {
		for _, name := range level.SortedNames() {
			n := level[name]
			if !n.IsFolder() {
				continue
			}
			p := name
			if prefix != "" {
				p = prefix + "/" + name
			}
			out = append(out, p)
			walk(n.Children, p)
		}
	}
	walk(fs, "")
	return out
}
