package storage_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/storage"
)

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Entries: []model.Entry{
			{TestCase: model.TestCase{ID: "tc_b", Title: "Second", Author: "qa", Tags: []string{"smoke"}}, FilePath: "auth/login.json"},
			{TestCase: model.TestCase{ID: "tc_a", Title: "First", Author: "qa",
				Actions: []model.Step{{Step: "open", ExpectedRes: "opened"}}}, FilePath: "auth/login.json"},
			{TestCase: model.TestCase{ID: "tc_c", Title: "Cart", Author: "dev"}, FilePath: "cart.json"},
		},
		Structure: model.FileStructure{
			"auth": {Type: model.NodeFolder, Children: model.FileStructure{
				"login.json": {Type: model.NodeFile, Path: "auth/login.json", TestCases: []string{"tc_b", "tc_a"}},
			}},
			"cart.json": {Type: model.NodeFile, Path: "cart.json", TestCases: []string{"tc_c"}},
		},
	}
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.json")

	s := storage.NewJSONStorage(cachePath)
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Fatal("cache file was not created")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(loaded.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(loaded.Entries))
	}
	if problems := loaded.Problems(); len(problems) != 0 {
		t.Errorf("expected consistent snapshot, got %v", problems)
	}
	if loaded.Entries[1].TestCase.Actions[0].ExpectedRes != "opened" {
		t.Errorf("expected step to survive, got %+v", loaded.Entries[1].TestCase.Actions)
	}
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	tmpDir := t.TempDir()

	s := storage.NewJSONStorage(filepath.Join(tmpDir, "nonexistent.json"))
	snap, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got %v", err)
	}

	if snap.Entries == nil || snap.Structure == nil {
		t.Error("expected initialized entries and structure")
	}
	if len(snap.Entries) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(snap.Entries))
	}
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "nested", "dir", "cache.json")

	s := storage.NewJSONStorage(cachePath)
	if err := s.Save(model.NewSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Fatal("cache file was not created in nested directory")
	}
}

func TestJSONStorage_ConcurrentSaves(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "cache.json")
	s := storage.NewJSONStorage(cachePath)
	reader := storage.NewJSONStorage(cachePath)
	if err := s.Save(testSnapshot()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		snap := testSnapshot()
		if i%2 == 1 {
			snap = model.NewSnapshot()
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- s.Save(snap)
		}()
		go func() {
			defer wg.Done()
			_, err := reader.Load()
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent access failed: %v", err)
		}
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load after concurrent saves: %v", err)
	}
	if n := len(loaded.Entries); n != 0 && n != 3 {
		t.Errorf("expected one of the saved snapshots, got %d entries", n)
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected only the cache file, got %d files", len(files))
	}
}

func TestOpenStorage_PicksBackendByExtension(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := storage.OpenStorage(filepath.Join(tmpDir, "cache.json"))
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	if _, ok := s.(*storage.JSONStorage); !ok {
		t.Errorf("expected *JSONStorage, got %T", s)
	}

	s, err = storage.OpenStorage(filepath.Join(tmpDir, "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer storage.Close(s)
	if _, ok := s.(*storage.SQLiteStorage); !ok {
		t.Errorf("expected *SQLiteStorage, got %T", s)
	}
}
