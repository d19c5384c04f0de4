package model

import "github.com/google/uuid"

// NewRequestID creates a new UUID string used to correlate requests and logs.
func NewRequestID() string {
	return uuid.New().String()
}

// NewTestCaseID creates an ID in the backend's "tc_xxxxxxxx" format.
func NewTestCaseID() string {
	return "tc_" + uuid.New().String()[:8]
}
