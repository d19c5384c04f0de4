// Package importer reads test cases from backend-format JSON files and HTML
// reports and creates them through the API.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nikbrunner/tcm/internal/model"
)

// ErrNoTestCases is returned when an input holds nothing to import.
var ErrNoTestCases = errors.New("no test cases found")

// ParseJSON reads a test-case file in the backend's format: an array of
// test case objects or a single object. Every entry gets filePath.
func ParseJSON(r io.Reader, filePath string) ([]model.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoTestCases
	}

	var raw []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse test case list: %w", err)
		}
	} else {
		raw = []json.RawMessage{data}
	}

	var entries []model.Entry
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue // not an object
		}
		var tc model.TestCase
		if err := json.Unmarshal(item, &tc); err != nil {
			return nil, fmt.Errorf("parse test case %d: %w", i, err)
		}
		entries = append(entries, model.Entry{TestCase: tc, FilePath: filePath})
	}

	if len(entries) == 0 {
		return nil, ErrNoTestCases
	}
	return entries, nil
}

// Creator creates a test case in a file. api.Client implements it.
type Creator interface {
	CreateIn(ctx context.Context, tc model.TestCase, filePath string) (*model.TestCase, error)
}

// Failure is one entry that could not be imported.
type Failure struct {
	Title string
	Err   error
}

// Result summarizes an import.
type Result struct {
	Created  []model.TestCase
	Failures []Failure
}

// Import creates every entry through c, one request each. Entries without a
// title or author are reported as failures without a request. The backend
// assigns new IDs. Import stops early only when ctx is done.
func Import(ctx context.Context, c Creator, entries []model.Entry) (Result, error) {
	var res Result
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		tc := e.TestCase
		if tc.Title == "" || tc.Author == "" {
			res.Failures = append(res.Failures, Failure{Title: tc.Title, Err: errors.New("title and author are required")})
			continue
		}

		created, err := c.CreateIn(ctx, tc, e.FilePath)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Title: tc.Title, Err: err})
			continue
		}
		res.Created = append(res.Created, *created)
	}
	return res, nil
}
