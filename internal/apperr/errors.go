// Package apperr defines the error taxonomy shared by the stores, the auth
// flow and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrMediaUpload        = errors.New("image upload failed")
)

// ValidationError carries field level messages. It is returned before any
// write happens.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Invalid is a shorthand for a single failing field.
func Invalid(field, message string) *ValidationError {
	v := NewValidation()
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
