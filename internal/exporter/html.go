// Package exporter renders a snapshot as a standalone HTML report or YAML.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/tree"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/test-cases-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("test-cases-%s.%s", time.Now().Format("2006-01-02"), strings.TrimPrefix(ext, "."))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the snapshot as an HTML report that mirrors the file
// tree. Only entries the structure lists are included.
func ExportHTML(snap *model.Snapshot) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Test cases</title>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<h1>Test cases</h1>\n")

	writeNodes(&b, snap, tree.Build(snap.Structure), 1)

	// Footer
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// writeNodes recursively writes folder and file sections.
func writeNodes(b *strings.Builder, snap *model.Snapshot, nodes []*tree.Node, indent int) {
	prefix := strings.Repeat("  ", indent)

	for _, n := range nodes {
		if n.IsFolder() {
			fmt.Fprintf(b, "%s<section class=\"folder\" data-name=\"%s\">\n", prefix, html.EscapeString(n.Name))
			fmt.Fprintf(b, "%s  <h2>%s</h2>\n", prefix, html.EscapeString(n.Name))
			writeNodes(b, snap, n.Children, indent+1)
			fmt.Fprintf(b, "%s</section>\n", prefix)
			continue
		}

		fmt.Fprintf(b, "%s<section class=\"file\" data-path=\"%s\">\n", prefix, html.EscapeString(n.FilePath))
		fmt.Fprintf(b, "%s  <h3>%s (%d)</h3>\n", prefix, html.EscapeString(n.Name), n.Count)
		for _, e := range snap.EntriesInFile(n.FilePath) {
			writeTestCase(b, e.TestCase, prefix+"  ")
		}
		fmt.Fprintf(b, "%s</section>\n", prefix)
	}
}

func writeTestCase(b *strings.Builder, tc model.TestCase, prefix string) {
	fmt.Fprintf(b,
		"%s<article class=\"test-case\" id=\"%s\" data-author=\"%s\" data-status=\"%s\" data-use-case=\"%s\">\n",
		prefix,
		html.EscapeString(tc.ID),
		html.EscapeString(tc.Author),
		html.EscapeString(string(tc.Status)),
		html.EscapeString(tc.UseCaseID),
	)
	fmt.Fprintf(b, "%s  <h4>%s</h4>\n", prefix, html.EscapeString(tc.Title))

	if tc.Precondition != "" {
		fmt.Fprintf(b, "%s  <p class=\"precondition\">%s</p>\n", prefix, html.EscapeString(tc.Precondition))
	}
	writeList(b, "tags", tc.Tags, prefix+"  ")
	writeList(b, "levels", tc.Levels, prefix+"  ")

	if len(tc.Actions) > 0 {
		fmt.Fprintf(b, "%s  <ol class=\"steps\">\n", prefix)
		for _, s := range tc.Actions {
			fmt.Fprintf(b, "%s    <li><span class=\"step\">%s</span> <span class=\"expected\">%s</span></li>\n",
				prefix, html.EscapeString(s.Step), html.EscapeString(s.ExpectedRes))
		}
		fmt.Fprintf(b, "%s  </ol>\n", prefix)
	}

	fmt.Fprintf(b, "%s</article>\n", prefix)
}

func writeList(b *strings.Builder, class string, items []string, prefix string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s<ul class=\"%s\">", prefix, class)
	for _, item := range items {
		fmt.Fprintf(b, "<li>%s</li>", html.EscapeString(item))
	}
	b.WriteString("</ul>\n")
}
