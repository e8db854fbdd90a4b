// Package service holds the business rules behind the HTTP handlers:
// accounts, roadmaps, the community feed and the assistant.
package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned for a failed email/password sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when a user acts on someone else's record.
	ErrForbidden = errors.New("not allowed")
	// ErrAIUnavailable is returned when no model client is configured.
	ErrAIUnavailable = errors.New("ai service is not configured")
	// ErrAIFailure wraps errors from the model client.
	ErrAIFailure = errors.New("ai request failed")
)

// ValidationError carries field-level messages back to the form.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the first message, ordered by field name.
func (e *ValidationError) First() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 || len(e.Fields[keys[0]]) == 0 {
		return ""
	}
	return e.Fields[keys[0]][0]
}

type validator struct {
	fields map[string][]string
}

func (v *validator) check(ok bool, field, msg string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = map[string][]string{}
	}
	v.fields[field] = append(v.fields[field], msg)
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Clock and ID sources, replaceable in tests.
type env struct {
	now   func() time.Time
	newID func() string
}

func defaultEnv() env {
	return env{now: time.Now, newID: uuid.NewString}
}

// timestamp truncates to milliseconds so every store round-trips it exactly.
func (e env) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

func runeLen(s string) int {
	return len([]rune(s))
}
