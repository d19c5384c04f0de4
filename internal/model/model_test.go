package model_test

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/nikbrunner/tcm/internal/model"
)

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Entries: []model.Entry{
			{FilePath: "auth/login.json", TestCase: model.TestCase{ID: "tc_1", Title: "Login ok", Tags: []string{"auth", "smoke"}}},
			{FilePath: "auth/login.json", TestCase: model.TestCase{ID: "tc_2", Title: "Login fails", Tags: []string{"auth"}}},
			{FilePath: "cart.json", TestCase: model.TestCase{ID: "tc_3", Title: "Add to cart", Tags: []string{"smoke"}}},
		},
		Structure: model.FileStructure{
			"auth": {Type: model.NodeFolder, Children: model.FileStructure{
				"login.json": {Type: model.NodeFile, Path: "auth/login.json", TestCases: []string{"tc_2", "tc_1"}},
			}},
			"cart.json": {Type: model.NodeFile, Path: "cart.json", TestCases: []string{"tc_3"}},
		},
	}
}

func TestTestCase_JSONFieldNames(t *testing.T) {
	tc := model.TestCase{
		Title:     "Login",
		Author:    "qa",
		Status:    model.StatusDraft,
		UseCaseID: "UC-1",
		Tags:      []string{"auth"},
		Levels:    []string{"e2e"},
		Actions:   []model.Step{{Step: "open", ExpectedRes: "opened"}},
	}

	data, err := json.Marshal(tc)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	got := string(data)

	for _, want := range []string{`"useCaseId":"UC-1"`, `"expected_res":"opened"`, `"actions":[`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
	// id is assigned by the backend and precondition is optional
	for _, absent := range []string{`"id"`, `"precondition"`} {
		if strings.Contains(got, absent) {
			t.Errorf("did not expect %s in %s", absent, got)
		}
	}
}

func TestTestCase_Clone(t *testing.T) {
	orig := model.TestCase{
		ID:      "tc_1",
		Tags:    []string{"a"},
		Levels:  []string{"l"},
		Actions: []model.Step{{Step: "s", ExpectedRes: "e"}},
	}

	c := orig.Clone()
	c.Tags[0] = "changed"
	c.Levels[0] = "changed"
	c.Actions[0].Step = "changed"

	if orig.Tags[0] != "a" || orig.Levels[0] != "l" || orig.Actions[0].Step != "s" {
		t.Errorf("clone shares memory with original: %+v", orig)
	}
}

func TestFileStructure_SortedNames(t *testing.T) {
	fs := model.FileStructure{
		"b.json": {Type: model.NodeFile},
		"zeta":   {Type: model.NodeFolder},
		"a.json": {Type: model.NodeFile},
		"Alpha":  {Type: model.NodeFolder},
	}

	got := fs.SortedNames()
	want := []string{"Alpha", "zeta", "a.json", "b.json"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SortedNames() = %v, want %v", got, want)
	}
}

func TestFileStructure_Folders(t *testing.T) {
	fs := model.FileStructure{
		"api": {Type: model.NodeFolder, Children: model.FileStructure{
			"v1": {Type: model.NodeFolder, Children: model.FileStructure{}},
		}},
		"x.json": {Type: model.NodeFile, Path: "x.json"},
	}

	got := fs.Folders()
	if strings.Join(got, ",") != "api,api/v1" {
		t.Errorf("Folders() = %v", got)
	}
}

func TestSnapshot_EntryByID(t *testing.T) {
	s := testSnapshot()

	e := s.EntryByID("tc_3")
	if e == nil {
		t.Fatal("expected to find tc_3")
	}
	if e.FilePath != "cart.json" {
		t.Errorf("expected cart.json, got %q", e.FilePath)
	}

	if s.EntryByID("missing") != nil {
		t.Error("expected nil for missing id")
	}
}

func TestSnapshot_EntriesInFile_FollowsStructureOrder(t *testing.T) {
	s := testSnapshot()

	entries := s.EntriesInFile("auth/login.json")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].TestCase.ID != "tc_2" || entries[1].TestCase.ID != "tc_1" {
		t.Errorf("unexpected order: %s, %s", entries[0].TestCase.ID, entries[1].TestCase.ID)
	}

	if got := s.EntriesInFile("nope.json"); got != nil {
		t.Errorf("expected nil for unknown file, got %v", got)
	}
}

func TestSnapshot_EntriesInFile_HidesUnlistedEntries(t *testing.T) {
	s := testSnapshot()
	s.Entries = append(s.Entries, model.Entry{FilePath: "cart.json", TestCase: model.TestCase{ID: "ghost"}})

	entries := s.EntriesInFile("cart.json")
	if len(entries) != 1 || entries[0].TestCase.ID != "tc_3" {
		t.Errorf("expected only tc_3, got %v", entries)
	}
}

func TestSnapshot_Listed(t *testing.T) {
	s := testSnapshot()
	s.Entries = append(s.Entries,
		model.Entry{FilePath: "cart.json", TestCase: model.TestCase{ID: "ghost", Title: "Ghost"}},
		model.Entry{FilePath: "gone.json", TestCase: model.TestCase{ID: "orphan", Title: "Orphan"}},
	)

	var ids []string
	for _, e := range s.Listed() {
		ids = append(ids, e.TestCase.ID)
	}
	if strings.Join(ids, ",") != "tc_1,tc_2,tc_3" {
		t.Errorf("Listed() = %v", ids)
	}

	if s.ListedEntry("tc_3") == nil {
		t.Error("expected tc_3 to be listed")
	}
	for _, id := range []string{"ghost", "orphan", "missing"} {
		if s.ListedEntry(id) != nil {
			t.Errorf("expected %s to be hidden", id)
		}
	}
}

func TestSnapshot_Problems(t *testing.T) {
	t.Run("consistent snapshot", func(t *testing.T) {
		if p := testSnapshot().Problems(); len(p) != 0 {
			t.Errorf("expected no problems, got %v", p)
		}
	})

	t.Run("entry without file and file without entry", func(t *testing.T) {
		s := testSnapshot()
		s.Entries = append(s.Entries, model.Entry{FilePath: "cart.json", TestCase: model.TestCase{ID: "ghost"}})
		node := s.Structure["cart.json"]
		node.TestCases = append(node.TestCases, "missing")
		s.Structure["cart.json"] = node

		p := s.Problems()
		sort.Strings(p)
		if len(p) != 2 {
			t.Fatalf("expected 2 problems, got %v", p)
		}
		if !strings.Contains(p[0], "missing") || !strings.Contains(p[1], "ghost") {
			t.Errorf("unexpected problems: %v", p)
		}
	})

	t.Run("entry listed under another file", func(t *testing.T) {
		s := testSnapshot()
		s.Entries[2].FilePath = "auth/login.json"

		p := s.Problems()
		if len(p) != 1 || !strings.Contains(p[0], "listed under") {
			t.Errorf("unexpected problems: %v", p)
		}
	})
}

func TestSnapshot_AllTags(t *testing.T) {
	got := testSnapshot().AllTags()
	if strings.Join(got, ",") != "auth,smoke" {
		t.Errorf("AllTags() = %v", got)
	}
}

func TestNewTestCaseID_Format(t *testing.T) {
	id := model.NewTestCaseID()
	if !strings.HasPrefix(id, "tc_") || len(id) != 11 {
		t.Errorf("unexpected id %q", id)
	}
	if model.NewRequestID() == model.NewRequestID() {
		t.Error("request ids should be unique")
	}
}
