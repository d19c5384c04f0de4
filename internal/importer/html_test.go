package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/tcm/internal/exporter"
	"github.com/nikbrunner/tcm/internal/importer"
	"github.com/nikbrunner/tcm/internal/model"
)

func TestParseHTMLReport_SingleTestCase(t *testing.T) {
	report := `<!DOCTYPE html>
<html><body>
<section class="file" data-path="cart.json">
  <h3>cart.json (1)</h3>
  <article class="test-case" id="tc_cart" data-author="dev" data-status="Draft" data-use-case="">
    <h4>Cart total</h4>
    <ol class="steps">
      <li><span class="step">Add item</span> <span class="expected">Total updates</span></li>
    </ol>
  </article>
</section>
</body></html>`

	entries, err := importer.ParseHTMLReport(strings.NewReader(report))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.FilePath != "cart.json" {
		t.Errorf("expected file cart.json, got %q", e.FilePath)
	}
	if e.TestCase.Title != "Cart total" || e.TestCase.Author != "dev" {
		t.Errorf("unexpected test case %+v", e.TestCase)
	}
	if len(e.TestCase.Actions) != 1 || e.TestCase.Actions[0].ExpectedRes != "Total updates" {
		t.Errorf("unexpected steps %+v", e.TestCase.Actions)
	}
}

func TestParseHTMLReport_Empty(t *testing.T) {
	entries, err := importer.ParseHTMLReport(strings.NewReader("<html><body><h1>Test cases</h1></body></html>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestParseHTMLReport_ExportRoundtrip(t *testing.T) {
	snap := &model.Snapshot{
		Entries: []model.Entry{
			{TestCase: model.TestCase{
				ID: "tc_login", Title: "Login & logout", Author: "qa", Status: model.StatusActive, UseCaseID: "UC-7",
				Precondition: "Account <exists>", Tags: []string{"auth", "auth"}, Levels: []string{"smoke"},
				Actions: []model.Step{{Step: "A", ExpectedRes: "a"}, {Step: "B", ExpectedRes: "b"}},
			}, FilePath: "auth/session/login.json"},
			{TestCase: model.TestCase{ID: "tc_cart", Title: "Cart", Author: "dev", Status: model.StatusDraft,
				Tags: []string{}, Levels: []string{}, Actions: []model.Step{}}, FilePath: "cart.json"},
		},
		Structure: model.FileStructure{
			"auth": {Type: model.NodeFolder, Children: model.FileStructure{
				"session": {Type: model.NodeFolder, Children: model.FileStructure{
					"login.json": {Type: model.NodeFile, Path: "auth/session/login.json", TestCases: []string{"tc_login"}},
				}},
			}},
			"cart.json": {Type: model.NodeFile, Path: "cart.json", TestCases: []string{"tc_cart"}},
		},
	}

	entries, err := importer.ParseHTMLReport(strings.NewReader(exporter.ExportHTML(snap)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	got := entries[0]
	want := snap.Entries[0]
	if got.FilePath != want.FilePath {
		t.Errorf("expected file %q, got %q", want.FilePath, got.FilePath)
	}
	tc := got.TestCase
	if tc.ID != "tc_login" || tc.Title != "Login & logout" || tc.Status != model.StatusActive || tc.UseCaseID != "UC-7" {
		t.Errorf("metadata mismatch: %+v", tc)
	}
	if tc.Precondition != "Account <exists>" {
		t.Errorf("expected unescaped precondition, got %q", tc.Precondition)
	}
	if len(tc.Tags) != 2 || tc.Tags[1] != "auth" {
		t.Errorf("expected duplicate tags to survive, got %v", tc.Tags)
	}
	if len(tc.Actions) != 2 || tc.Actions[1].Step != "B" {
		t.Errorf("expected steps in order, got %+v", tc.Actions)
	}

	if entries[1].FilePath != "cart.json" {
		t.Errorf("expected cart.json second, got %q", entries[1].FilePath)
	}
}
