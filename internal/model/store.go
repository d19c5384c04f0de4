package model

import "fmt"

// Snapshot holds the test cases and the file structure from one list call.
// Both halves are treated as a single consistent unit.
type Snapshot struct {
	Entries   []Entry       `json:"test_cases" yaml:"test_cases"`
	Structure FileStructure `json:"file_structure" yaml:"file_structure"`
}

// NewSnapshot creates an empty Snapshot with initialized fields.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Entries:   []Entry{},
		Structure: FileStructure{},
	}
}

// EntryByID finds an entry by test case ID, returns nil if not found.
func (s *Snapshot) EntryByID(id string) *Entry {
	for i := range s.Entries {
		if s.Entries[i].TestCase.ID == id {
			return &s.Entries[i]
		}
	}
	return nil
}

// EntriesInFile returns the entries of the file at path that the structure
// also lists, in the order the file node lists them.
func (s *Snapshot) EntriesInFile(path string) []Entry {
	node, ok := s.Structure.FindFile(path)
	if !ok {
		return nil
	}

	byID := make(map[string]Entry)
	for _, e := range s.Entries {
		if e.FilePath == path {
			byID[e.TestCase.ID] = e
		}
	}

	var result []Entry
	for _, id := range node.TestCases {
		if e, ok := byID[id]; ok {
			result = append(result, e)
		}
	}
	return result
}

// Listed returns the entries whose file node lists them, in entry order.
// Entries that break the snapshot invariant are left out.
func (s *Snapshot) Listed() []Entry {
	files, _ := s.Structure.Files()
	result := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if n, ok := files[e.FilePath]; ok && listsID(n, e.TestCase.ID) {
			result = append(result, e)
		}
	}
	return result
}

// ListedEntry is EntryByID restricted to entries the structure lists.
func (s *Snapshot) ListedEntry(id string) *Entry {
	e := s.EntryByID(id)
	if e == nil {
		return nil
	}
	node, ok := s.Structure.FindFile(e.FilePath)
	if !ok || !listsID(node, id) {
		return nil
	}
	return e
}

func listsID(node Node, id string) bool {
	for _, listed := range node.TestCases {
		if listed == id {
			return true
		}
	}
	return false
}

// Problems reports every violation of the snapshot invariant: each entry
// resolves to exactly one file node that lists it, and each listed ID has
// an entry. An empty result means the snapshot is consistent.
func (s *Snapshot) Problems() []string {
	var problems []string

	files, dups := s.Structure.Files()
	for _, d := range dups {
		problems = append(problems, fmt.Sprintf("file %q appears more than once", d))
	}

	listed := make(map[string]string) // id -> path
	for path, n := range files {
		for _, id := range n.TestCases {
			listed[id] = path
		}
	}

	seen := make(map[string]bool)
	for _, e := range s.Entries {
		id := e.TestCase.ID
		seen[id] = true
		path, ok := listed[id]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("test case %q is not listed by any file", id))
		case path != e.FilePath:
			problems = append(problems, fmt.Sprintf("test case %q is in %q but listed under %q", id, e.FilePath, path))
		}
	}

	for id, path := range listed {
		if !seen[id] {
			problems = append(problems, fmt.Sprintf("file %q lists unknown test case %q", path, id))
		}
	}

	return problems
}

// AllTags returns every distinct tag across entries in first-seen order.
func (s *Snapshot) AllTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range s.Entries {
		for _, t := range e.TestCase.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}
