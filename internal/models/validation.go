// Package models defines the data structures exchanged by the service.
package models

import "encoding/json"

const (
	EventTypeValid   = "schema.validation.valid"
	EventTypeInvalid = "schema.validation.invalid"
)

// Violation is one failed constraint in a validated document.
type Violation struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationEvent is published for every decided validation request.
type ValidationEvent struct {
	EventType  string      `json:"eventType"`
	RequestID  string      `json:"requestId"`
	Schema     string      `json:"schema,omitempty"`
	Source     string      `json:"source"`
	Valid      bool        `json:"valid"`
	Kind       string      `json:"kind"`
	Violations []Violation `json:"violations,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Schema   json.RawMessage `json:"schema"`
	Document json.RawMessage `json:"document"`
}

// ValidateResponse is returned by the validation endpoints.
type ValidateResponse struct {
	Valid      bool        `json:"valid"`
	Kind       string      `json:"kind"`
	Error      string      `json:"error,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// SchemaList is returned by GET /v1/schemas.
type SchemaList struct {
	Schemas []string `json:"schemas"`
}
