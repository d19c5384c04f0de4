package api

import "github.com/nikbrunner/tcm/internal/model"

// envelope is the common part of every response body.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type listResponse struct {
	envelope
	TestCases     []model.Entry       `json:"test_cases"`
	FileStructure model.FileStructure `json:"file_structure"`
}

type searchResponse struct {
	envelope
	Results []model.Entry `json:"results"`
}

type testCaseResponse struct {
	envelope
	TestCase model.TestCase `json:"test_case"`
}

type entryResponse struct {
	envelope
	TestCase model.Entry `json:"test_case"`
}

type createRequest struct {
	model.TestCase
	FilePath string `json:"file_path,omitempty"`
}

type moveRequest struct {
	FilePath string `json:"file_path"`
}

type reorderRequest struct {
	Steps []model.Step `json:"steps"`
}

type directoryRequest struct {
	Name string `json:"name"`
}
