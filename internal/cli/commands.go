package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tcm/internal/exporter"
	"github.com/nikbrunner/tcm/internal/importer"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/picker"
	"github.com/nikbrunner/tcm/internal/search"
	"github.com/spf13/cobra"
)

func newListCommand(env *Env) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the file tree with its test cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := env.snapshot(cmd.Context(), offline)
			if err != nil {
				return err
			}
			if len(snap.Structure) == 0 {
				warn(cmd.OutOrStdout(), "no test cases")
				return nil
			}
			printTree(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "read the last cached snapshot instead of the backend")
	return cmd
}

func newSearchCommand(env *Env) *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search test cases by title, id or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("empty query")
			}

			results, err := env.Client.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				warn(out, search.EmptyResults)
				return nil
			}

			if !pick {
				fmt.Fprintln(out, search.Header(query, len(results)))
				printEntries(out, results)
				return nil
			}

			chosen := &results[0]
			if len(results) > 1 {
				p := tea.NewProgram(picker.New(results, query))
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				chosen = final.(picker.Picker).Selected()
				if chosen == nil {
					return nil
				}
			}
			printTestCase(out, *chosen)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose one result interactively and show it")
	return cmd
}

func newShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one test case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env.Client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTestCase(cmd.OutOrStdout(), *e)
			return nil
		},
	}
}

func newMkdirCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("directory name required")
			}
			if err := env.Client.CreateDirectory(cmd.Context(), name); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "directory created: %s", name)
			return nil
		},
	}
}

func newImportCommand(env *Env) *cobra.Command {
	var into string
	cmd := &cobra.Command{
		Use:   "import <file.json|report.html>",
		Short: "Create test cases from a test-case file or an exported HTML report",
		Long: "Reads a backend-format JSON file (one test case or an array) or an HTML report " +
			"written by 'tcm export', and creates every test case through the backend. " +
			"The backend assigns new IDs.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			entries, err := readImport(args[0], into, env.Config.DefaultFileName)
			if err != nil {
				return err
			}

			res, err := importer.Import(cmd.Context(), env.Client, entries)
			for _, f := range res.Failures {
				failure(out, "%s: %v", f.Title, f.Err)
			}
			if len(res.Created) > 0 {
				success(out, "imported %d test cases", len(res.Created))
			}
			if err != nil {
				return err
			}
			if len(res.Failures) > 0 {
				return fmt.Errorf("%d of %d test cases not imported", len(res.Failures), len(entries))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "target file for every test case (default: the file's own name, or the report's files)")
	return cmd
}

// readImport parses path by extension. into, when set, overrides every
// target file.
func readImport(path, into, defaultFile string) ([]model.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []model.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entries, err = importer.ParseJSON(f, filepath.Base(path))
	case ".html", ".htm":
		entries, err = importer.ParseHTMLReport(f)
	default:
		return nil, fmt.Errorf("unsupported import format %q (want .json or .html)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, importer.ErrNoTestCases
	}

	for i := range entries {
		switch {
		case into != "":
			entries[i].FilePath = into
		case entries[i].FilePath == "":
			entries[i].FilePath = defaultFile
		}
	}
	return entries, nil
}

func newExportCommand(env *Env) *cobra.Command {
	var (
		format  string
		output  string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the test cases to an HTML report or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "html" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want html or yaml)", format)
			}

			snap, err := env.snapshot(cmd.Context(), offline)
			if err != nil {
				return err
			}

			var data []byte
			if format == "yaml" {
				data, err = exporter.ExportYAML(snap)
				if err != nil {
					return err
				}
			} else {
				data = []byte(exporter.ExportHTML(snap))
			}

			path := output
			if path == "" {
				path, err = exporter.DefaultExportPath(format)
				if err != nil {
					return err
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "exported %d test cases to %s", len(snap.Entries), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "html or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default ~/Downloads/test-cases-<date>.<format>)")
	cmd.Flags().BoolVar(&offline, "offline", false, "export the last cached snapshot instead of the backend")
	return cmd
}
