package exporter

import (
	"strings"
	"testing"

	"github.com/nikbrunner/tcm/internal/model"
	"gopkg.in/yaml.v3"
)

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Entries: []model.Entry{
			{TestCase: model.TestCase{
				ID: "tc_login", Title: "Login <works>", Author: "qa", Status: model.StatusActive,
				UseCaseID: "UC-1", Precondition: "User exists", Tags: []string{"auth", "smoke"}, Levels: []string{"e2e"},
				Actions: []model.Step{{Step: "Open page", ExpectedRes: "Form shown"}, {Step: "Submit", ExpectedRes: "Logged in"}},
			}, FilePath: "auth/login.json"},
			{TestCase: model.TestCase{ID: "tc_cart", Title: "Cart total", Author: "dev", Status: model.StatusDraft}, FilePath: "cart.json"},
			{TestCase: model.TestCase{ID: "tc_orphan", Title: "Orphan", Author: "dev"}, FilePath: "gone.json"},
		},
		Structure: model.FileStructure{
			"auth": {Type: model.NodeFolder, Children: model.FileStructure{
				"login.json": {Type: model.NodeFile, Path: "auth/login.json", TestCases: []string{"tc_login"}},
			}},
			"cart.json": {Type: model.NodeFile, Path: "cart.json", TestCases: []string{"tc_cart"}},
		},
	}
}

func TestExportHTML_EmptySnapshot(t *testing.T) {
	html := ExportHTML(model.NewSnapshot())

	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<title>Test cases</title>") {
		t.Error("expected title element")
	}
	if strings.Contains(html, "<section") {
		t.Error("expected no sections for an empty snapshot")
	}
}

func TestExportHTML_Structure(t *testing.T) {
	html := ExportHTML(testSnapshot())

	if !strings.Contains(html, `<section class="folder" data-name="auth">`) {
		t.Error("expected folder section")
	}
	if !strings.Contains(html, `<section class="file" data-path="auth/login.json">`) {
		t.Error("expected file section")
	}
	if !strings.Contains(html, "<h3>login.json (1)</h3>") {
		t.Error("expected file heading with count")
	}

	// Folders before files
	if strings.Index(html, `data-name="auth"`) > strings.Index(html, `data-path="cart.json"`) {
		t.Error("expected folder before root file")
	}
}

func TestExportHTML_TestCase(t *testing.T) {
	html := ExportHTML(testSnapshot())

	for _, want := range []string{
		`id="tc_login"`,
		`data-status="Active"`,
		`data-use-case="UC-1"`,
		`<p class="precondition">User exists</p>`,
		`<ul class="tags"><li>auth</li><li>smoke</li></ul>`,
		`<span class="step">Open page</span> <span class="expected">Form shown</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %s in report", want)
		}
	}
	if strings.Index(html, "Open page") > strings.Index(html, "Submit") {
		t.Error("expected steps in order")
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := ExportHTML(testSnapshot())

	if !strings.Contains(html, "Login &lt;works&gt;") {
		t.Error("expected escaped title")
	}
	if strings.Contains(html, "Login <works>") {
		t.Error("expected raw title to be escaped")
	}
}

func TestExportHTML_SkipsUnlistedEntries(t *testing.T) {
	html := ExportHTML(testSnapshot())

	if strings.Contains(html, "tc_orphan") {
		t.Error("expected entry missing from the structure to be skipped")
	}
}

func TestExportYAML(t *testing.T) {
	data, err := ExportYAML(testSnapshot())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var out struct {
		Files []struct {
			Path      string           `yaml:"path"`
			TestCases []model.TestCase `yaml:"test_cases"`
		} `yaml:"files"`
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(out.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(out.Files))
	}
	if out.Files[0].Path != "auth/login.json" {
		t.Errorf("expected auth/login.json first, got %s", out.Files[0].Path)
	}
	steps := out.Files[0].TestCases[0].Actions
	if len(steps) != 2 || steps[1].ExpectedRes != "Logged in" {
		t.Errorf("expected steps to survive, got %+v", steps)
	}
	if !strings.Contains(string(data), "expected_res: Form shown") {
		t.Error("expected snake_case step keys")
	}
}
