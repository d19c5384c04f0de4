// Package tree turns a FileStructure snapshot into a display tree.
//
// Every function here is pure: inputs are never mutated and the same
// snapshot always yields the same tree.
package tree

import "github.com/nikbrunner/tcm/internal/model"

// Kind distinguishes folders from files in the display tree.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
)

// Node is one folder or file of the display tree.
type Node struct {
	Name     string
	ID       string // slash-joined names from the root, unique within a tree
	Kind     Kind
	FilePath string // file nodes only
	Count    int    // file nodes only: number of listed test cases
	Children []*Node
}

// IsFolder returns true if this node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Build converts fs into a display tree. Folders sort before files.
func Build(fs model.FileStructure) []*Node {
	return build(fs, "")
}

func build(fs model.FileStructure, prefix string) []*Node {
	names := fs.SortedNames()
	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		src := fs[name]
		id := name
		if prefix != "" {
			id = prefix + "/" + name
		}

		if src.IsFolder() {
			nodes = append(nodes, &Node{
				Name:     name,
				ID:       id,
				Kind:     KindFolder,
				Children: build(src.Children, id),
			})
			continue
		}

		nodes = append(nodes, &Node{
			Name:     name,
			ID:       id,
			Kind:     KindFile,
			FilePath: src.Path,
			Count:    len(src.TestCases),
		})
	}
	return nodes
}

// Row is one visible line of the tree.
type Row struct {
	Node     *Node
	Depth    int
	Expanded bool
	Parents  []*Node // ancestors from the root, nearest last
}

// Flatten walks the tree depth-first and returns the visible rows.
// Folders are collapsed unless their ID is set in expanded.
func Flatten(nodes []*Node, expanded map[string]bool) []Row {
	var rows []Row
	var walk func([]*Node, []*Node)
	walk = func(level []*Node, parents []*Node) {
		for _, n := range level {
			open := n.IsFolder() && expanded[n.ID]
			rows = append(rows, Row{
				Node:     n,
				Depth:    len(parents),
				Expanded: open,
				Parents:  parents,
			})
			if open {
				next := make([]*Node, len(parents)+1)
				copy(next, parents)
				next[len(parents)] = n
				walk(n.Children, next)
			}
		}
	}
	walk(nodes, nil)
	return rows
}

// ToggleExpand returns a new expanded set with id set to expand.
func ToggleExpand(expanded map[string]bool, id string, expand bool) map[string]bool {
	result := make(map[string]bool, len(expanded)+1)
	for k, v := range expanded {
		if v {
			result[k] = v
		}
	}
	if expand {
		result[id] = true
	} else {
		delete(result, id)
	}
	return result
}

// Files returns every file node in depth-first order.
func Files(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.IsFolder() {
			out = append(out, Files(n.Children)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// Find returns the node with the given ID, or nil.
func Find(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if n.IsFolder() {
			if found := Find(n.Children, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindFile returns the file node whose FilePath is path, or nil.
func FindFile(nodes []*Node, path string) *Node {
	for _, n := range Files(nodes) {
		if n.FilePath == path {
			return n
		}
	}
	return nil
}

// Ancestors returns the folder IDs enclosing the node with the given ID,
// outermost first, so callers can expand them to reveal it.
func Ancestors(nodes []*Node, id string) []string {
	var path []string
	var walk func([]*Node, []string) bool
	walk = func(level []*Node, trail []string) bool {
		for _, n := range level {
			if n.ID == id {
				path = trail
				return true
			}
			if n.IsFolder() {
				next := append(append([]string{}, trail...), n.ID)
				if walk(n.Children, next) {
					return true
				}
			}
		}
		return false
	}
	walk(nodes, nil)
	return path
}

// RowIndex returns the index of the row showing the node with id, or -1.
func RowIndex(rows []Row, id string) int {
	for i, r := range rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}

// Names returns the names along a row's path: its ancestors then itself.
func (r Row) Names() []string {
	names := make([]string, 0, len(r.Parents)+1)
	for _, p := range r.Parents {
		names = append(names, p.Name)
	}
	return append(names, r.Node.Name)
}
