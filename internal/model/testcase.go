package model

// Status is the lifecycle state of a test case.
// Values other than the known constants are kept verbatim.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusActive     Status = "Active"
	StatusDeprecated Status = "Deprecated"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusDraft, StatusActive, StatusDeprecated}

// Step is one action and its expected result.
type Step struct {
	Step        string `json:"step" yaml:"step"`
	ExpectedRes string `json:"expected_res" yaml:"expected_res"`
}

// TestCase is a structured test scenario.
// ID is assigned by the backend on creation.
type TestCase struct {
	ID           string   `json:"id,omitempty" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Author       string   `json:"author" yaml:"author"`
	Status       Status   `json:"status" yaml:"status"`
	UseCaseID    string   `json:"useCaseId" yaml:"useCaseId"`
	Precondition string   `json:"precondition,omitempty" yaml:"precondition,omitempty"`
	Tags         []string `json:"tags" yaml:"tags"`
	Levels       []string `json:"levels" yaml:"levels"`
	Actions      []Step   `json:"actions" yaml:"actions"`
	CreatedAt    string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (tc TestCase) Clone() TestCase {
	out := tc
	out.Tags = cloneStrings(tc.Tags)
	out.Levels = cloneStrings(tc.Levels)
	if tc.Actions != nil {
		out.Actions = make([]Step, len(tc.Actions))
		copy(out.Actions, tc.Actions)
	}
	return out
}

// Entry pairs a test case with the file it lives in.
type Entry struct {
	TestCase TestCase `json:"test_case" yaml:"test_case"`
	FilePath string   `json:"file_path" yaml:"file_path"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
