package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is returned when a write requires a signed-in user.
	ErrUnauthenticated = errors.New("login required")
	// ErrInvalidSubmission marks any input validation failure.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrVehicleNotFound is returned when no catalogue entry matches the selection.
	ErrVehicleNotFound = errors.New("the selected electric vehicle could not be found")
)

// ValidationError carries per-field messages. It matches ErrInvalidSubmission via errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSubmission
}
