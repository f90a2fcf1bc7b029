// Package validation provides input validation for the safety API. Request
// fields are free text typed by front-desk staff, so they are checked for
// length, charset and known hostile patterns before evaluation.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mindhub/medsafety-api/interfaces"
)

// Pre-compiled patterns, compiled once at package initialization.
var (
	// Medication, allergy and condition names: alphanumeric plus Spanish
	// accents and safe punctuation.
	termRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'/(),%áéíóúüñÁÉÍÓÚÜÑ]+$`)

	// Hostile substrings that pass the charset check. strings.Contains is
	// faster than regex for plain substring scans.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"union select", "drop table", "delete from", "insert into",
		"exec(", "execute(",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

const maxTermLength = 200

// Compile-time check to ensure Validator implements InputValidator
var _ interfaces.InputValidator = (*Validator)(nil)

// Validator implements the interfaces.InputValidator contract.
type Validator struct{}

// NewValidator creates a new input validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTerm validates a medication, allergy or condition name.
func (v *Validator) ValidateTerm(term string) error {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return fmt.Errorf("term cannot be empty")
	}

	if len(trimmed) > maxTermLength {
		return fmt.Errorf("term too long: %d characters (max %d)", len(trimmed), maxTermLength)
	}

	if !termRegex.MatchString(trimmed) {
		return fmt.Errorf("term contains invalid characters")
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("term contains a disallowed pattern")
		}
	}

	return nil
}

// ValidateAge validates a declared patient age.
func (v *Validator) ValidateAge(age int) error {
	if age < 0 {
		return fmt.Errorf("age cannot be negative, got: %d", age)
	}
	if age > 150 {
		return fmt.Errorf("age is out of range, got: %d", age)
	}
	return nil
}
