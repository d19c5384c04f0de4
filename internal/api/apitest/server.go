// Package apitest provides an in-memory backend that serves the test-case
// REST endpoints for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nikbrunner/tcm/internal/model"
)

// DefaultFile is where created test cases land when no file_path is sent.
const DefaultFile = "new_test_cases.json"

// Request records one call the server received.
type Request struct {
	Method string
	Path   string
}

type failure struct {
	status  int
	message string
}

// Server is an in-memory test-case backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]model.TestCase // file path -> test cases in order
	dirs     map[string]bool
	requests []Request
	failures map[string]failure // "METHOD route-pattern" -> forced failure
}

// NewServer starts a backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		files:    make(map[string][]model.TestCase),
		dirs:     make(map[string]bool),
		failures: make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/api/test-cases", s.handleList)
	r.Get("/api/test-cases/search", s.handleSearch)
	r.Post("/api/test-case", s.handleCreate)
	r.Get("/api/test-case/{id}", s.handleGet)
	r.Put("/api/test-case/{id}", s.handleUpdate)
	r.Delete("/api/test-case/{id}", s.handleDelete)
	r.Post("/api/test-case/{id}/duplicate", s.handleDuplicate)
	r.Put("/api/test-case/{id}/move", s.handleMove)
	r.Put("/api/test-case/{id}/reorder-steps", s.handleReorder)
	r.Post("/api/directories", s.handleCreateDirectory)
	return r
}

// Seed stores tc in file, keeping tc.ID.
func (s *Server) Seed(file string, tcs ...model.TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file] = append(s.files[file], tcs...)
}

// Fail makes every request matching method and route fail with message.
// route is the chi pattern, e.g. "/api/test-case/{id}".
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+route] = failure{status: status, message: message}
}

// ClearFailures removes every forced failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests returns how many calls matched method (any path when "").
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if method == "" || r.Method == method {
			n++
		}
	}
	return n
}

// TestCase returns the stored test case and its file.
func (s *Server) TestCase(id string) (model.TestCase, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, i := s.find(id)
	if i < 0 {
		return model.TestCase{}, "", false
	}
	return s.files[file][i].Clone(), file, true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		s.mu.Unlock()

		rctx := chi.NewRouteContext()
		if chi.RouteContext(r.Context()).Routes.Match(rctx, r.Method, r.URL.Path) {
			s.mu.Lock()
			f, ok := s.failures[r.Method+" "+rctx.RoutePattern()]
			s.mu.Unlock()
			if ok {
				writeError(w, f.status, f.message)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// find returns the file and index of id, or ("", -1). Caller holds mu.
func (s *Server) find(id string) (string, int) {
	for file, tcs := range s.files {
		for i, tc := range tcs {
			if tc.ID == id {
				return file, i
			}
		}
	}
	return "", -1
}

// snapshot builds the list payload. Caller holds mu.
func (s *Server) snapshot() *model.Snapshot {
	snap := model.NewSnapshot()

	ensureDir := func(dir string) model.FileStructure {
		level := snap.Structure
		if dir == "." || dir == "" {
			return level
		}
		for _, part := range strings.Split(dir, "/") {
			n, ok := level[part]
			if !ok {
				n = model.Node{Type: model.NodeFolder, Children: model.FileStructure{}}
				level[part] = n
			}
			level = n.Children
		}
		return level
	}

	for dir := range s.dirs {
		ensureDir(dir)
	}

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		level := ensureDir(path.Dir(p))
		ids := make([]string, 0, len(s.files[p]))
		for _, tc := range s.files[p] {
			ids = append(ids, tc.ID)
			snap.Entries = append(snap.Entries, model.Entry{TestCase: tc.Clone(), FilePath: p})
		}
		level[path.Base(p)] = model.Node{Type: model.NodeFile, Path: p, TestCases: ids}
	}
	return snap
}

func now() string {
	return time.Now().Format("2006-01-02T15:04:05")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"test_cases":     snap.Entries,
		"file_structure": snap.Structure,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	results := []model.Entry{}
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
		return
	}

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	for _, e := range snap.Entries {
		tc := e.TestCase
		match := strings.Contains(strings.ToLower(tc.ID), q) || strings.Contains(strings.ToLower(tc.Title), q)
		for _, tag := range tc.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				match = true
			}
		}
		if match {
			results = append(results, e)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"test_case": model.Entry{TestCase: s.files[file][i], FilePath: file},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		model.TestCase
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tc := body.TestCase
	if tc.Title == "" || tc.Author == "" {
		writeError(w, http.StatusBadRequest, `field "title" and "author" are required`)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tc.ID == "" {
		tc.ID = model.NewTestCaseID()
	}
	if _, i := s.find(tc.ID); i >= 0 {
		writeError(w, http.StatusBadRequest, "test case "+tc.ID+" already exists")
		return
	}
	if tc.Status == "" {
		tc.Status = model.StatusDraft
	}
	tc.CreatedAt, tc.UpdatedAt = now(), now()

	file := body.FilePath
	if file == "" {
		file = DefaultFile
	}
	if !strings.HasSuffix(file, ".json") {
		file += ".json"
	}
	s.files[file] = append(s.files[file], tc)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "test_case": tc, "file_path": file})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var tc model.TestCase
	if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	tc.ID = id
	tc.CreatedAt = s.files[file][i].CreatedAt
	tc.UpdatedAt = now()
	s.files[file][i] = tc
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "test_case": tc})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	s.removeAt(file, i)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "test case deleted"})
}

// removeAt drops a test case and the file once it is empty. Caller holds mu.
func (s *Server) removeAt(file string, i int) model.TestCase {
	tc := s.files[file][i]
	s.files[file] = append(s.files[file][:i], s.files[file][i+1:]...)
	if len(s.files[file]) == 0 {
		delete(s.files, file)
	}
	return tc
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	dup := s.files[file][i].Clone()
	dup.ID = model.NewTestCaseID()
	dup.Title += " (copy)"
	dup.CreatedAt, dup.UpdatedAt = now(), now()
	s.files[file] = append(s.files[file], dup)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "test_case": dup})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target := strings.TrimSpace(body.FilePath)
	if target == "" {
		writeError(w, http.StatusBadRequest, "file path is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	tc := s.removeAt(file, i)
	s.files[target] = append(s.files[target], tc)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_file_path": target})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Steps []model.Step `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "steps must be an array")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, i := s.find(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "test case not found")
		return
	}
	tc := s.files[file][i]
	tc.Actions = body.Steps
	tc.UpdatedAt = now()
	s.files[file][i] = tc
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "test_case": tc})
}

func (s *Server) handleCreateDirectory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "directory name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirs[name] {
		writeError(w, http.StatusBadRequest, "directory already exists")
		return
	}
	s.dirs[name] = true
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "directory_name": name})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
