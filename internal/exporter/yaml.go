package exporter

import (
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/tree"
	"gopkg.in/yaml.v3"
)

// yamlFile is one file of the YAML export.
type yamlFile struct {
	Path      string           `yaml:"path"`
	TestCases []model.TestCase `yaml:"test_cases"`
}

// ExportYAML renders the snapshot as a YAML list of files in tree order.
func ExportYAML(snap *model.Snapshot) ([]byte, error) {
	files := []yamlFile{}
	for _, n := range tree.Files(tree.Build(snap.Structure)) {
		f := yamlFile{Path: n.FilePath, TestCases: []model.TestCase{}}
		for _, e := range snap.EntriesInFile(n.FilePath) {
			f.TestCases = append(f.TestCases, e.TestCase)
		}
		files = append(files, f)
	}
	return yaml.Marshal(map[string]any{"files": files})
}
