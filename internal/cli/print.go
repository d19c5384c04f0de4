package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/tree"
)

var (
	folderColor = color.New(color.FgCyan, color.Bold)
	fileColor   = color.New(color.FgCyan)
	metaColor   = color.New(color.FgHiBlack)
	tagColor    = color.New(color.FgMagenta)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed)
)

func statusColor(s model.Status) *color.Color {
	switch s {
	case model.StatusActive:
		return okColor
	case model.StatusDeprecated:
		return errColor
	}
	return warnColor
}

// printTree writes the file tree with the test cases of every file.
func printTree(w io.Writer, snap *model.Snapshot) {
	var walk func(nodes []*tree.Node, depth int)
	walk = func(nodes []*tree.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, n := range nodes {
			if n.IsFolder() {
				folderColor.Fprintf(w, "%s%s/\n", indent, n.Name)
				walk(n.Children, depth+1)
				continue
			}
			fileColor.Fprintf(w, "%s%s", indent, n.Name)
			metaColor.Fprintf(w, " (%d)\n", n.Count)
			for _, e := range snap.EntriesInFile(n.FilePath) {
				fmt.Fprintf(w, "%s  %s  %s  ", indent, metaColor.Sprint(e.TestCase.ID), e.TestCase.Title)
				statusColor(e.TestCase.Status).Fprintf(w, "[%s]\n", e.TestCase.Status)
			}
		}
	}
	walk(tree.Build(snap.Structure), 0)
}

// printEntries writes one line per entry.
func printEntries(w io.Writer, entries []model.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s  ", metaColor.Sprint(e.TestCase.ID), e.TestCase.Title, fileColor.Sprint(e.FilePath))
		statusColor(e.TestCase.Status).Fprintf(w, "[%s]\n", e.TestCase.Status)
	}
}

// printTestCase writes every field of one test case.
func printTestCase(w io.Writer, e model.Entry) {
	tc := e.TestCase
	folderColor.Fprintln(w, tc.Title)
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "%-14s%s\n", metaColor.Sprint(label), value)
	}
	field("ID", tc.ID)
	field("File", e.FilePath)
	field("Author", tc.Author)
	field("Status", statusColor(tc.Status).Sprint(tc.Status))
	field("Use case", tc.UseCaseID)

	tags := make([]string, len(tc.Tags))
	for i, t := range tc.Tags {
		tags[i] = tagColor.Sprint("#" + t)
	}
	field("Tags", strings.Join(tags, " "))
	field("Levels", strings.Join(tc.Levels, ", "))
	field("Created", tc.CreatedAt)
	field("Updated", tc.UpdatedAt)

	if tc.Precondition != "" {
		fmt.Fprintln(w)
		folderColor.Fprintln(w, "Precondition")
		fmt.Fprintln(w, tc.Precondition)
	}

	fmt.Fprintln(w)
	folderColor.Fprintf(w, "Steps (%d)\n", len(tc.Actions))
	for i, s := range tc.Actions {
		fmt.Fprintf(w, "%d. %s\n", i+1, s.Step)
		metaColor.Fprintf(w, "   → %s\n", s.ExpectedRes)
	}
}

func success(w io.Writer, format string, a ...any) {
	okColor.Fprintf(w, "✓ "+format+"\n", a...)
}

func warn(w io.Writer, format string, a ...any) {
	warnColor.Fprintf(w, format+"\n", a...)
}

func failure(w io.Writer, format string, a ...any) {
	errColor.Fprintf(w, "✗ "+format+"\n", a...)
}
