// Package validation checks operator-supplied request values before they reach a view.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

var (
	resourceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	entityIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)
)

// Maximum lengths of path values.
const (
	MaxResourceNameLen = 64
	MaxEntityIDLen     = 128
)

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Pattern validates that a field matches the provided regular expression.
// Empty values pass; combine with Required when the field is mandatory.
func Pattern(fieldName string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return fieldName + " has an invalid format."
		}
		return ""
	}
}

// ResourceName validates a console resource slug such as "products".
func ResourceName(fieldName string) []Validator {
	return []Validator{Required(fieldName, MaxResourceNameLen), Pattern(fieldName, resourceNamePattern)}
}

// EntityID validates an upstream entity identifier used in a path segment.
func EntityID(fieldName string) []Validator {
	return []Validator{Required(fieldName, MaxEntityIDLen), Pattern(fieldName, entityIDPattern)}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break // Stop at first error per field
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether every validated field passed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }
