package schema

import (
	"bytes"
	"errors"
	"fmt"
)

// Violation kinds. Every ValidationError unwraps to exactly one of these.
var (
	ErrUnknownTable          = errors.New("unknown table")
	ErrUnknownField          = errors.New("unknown field")
	ErrMissingMandatoryValue = errors.New("missing mandatory value")
	ErrDuplicateUniqueValue  = errors.New("duplicate unique value")
	ErrUnresolvedReference   = errors.New("unresolved reference")
	ErrUnexpectedField       = errors.New("unexpected field")
	ErrIncompleteDocument    = errors.New("incomplete document")
	ErrKindMismatch          = errors.New("value kind mismatch")
	ErrValueNotAllowed       = errors.New("value not allowed")
	ErrSubtypeMismatch       = errors.New("subtype mismatch")
	ErrInvalidHeader         = errors.New("invalid header")
)

// ValidationError represents a schema violation with enough context to
// locate it
type ValidationError struct {
	Kind       error  // One of the Err* sentinels
	Table      string // Table name (e.g., "AOT_TIME"), empty for header errors
	Field      string // Field or keyword name
	Row        int    // Row index, -1 when not row-scoped
	Value      any    // Offending value (optional)
	Message    string // Error message
	Suggestion string // Helpful suggestion (optional)
	Line       int    // Line number in YAML (if available)
}

// Error returns a formatted error message
func (e *ValidationError) Error() string {
	loc := e.location()
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at %s (line %d): %s", e.kindName(), loc, e.Line, e.Message)
	} else {
		msg = fmt.Sprintf("%s at %s: %s", e.kindName(), loc, e.Message)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// Unwrap returns the violation kind so errors.Is works against the sentinels
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Path returns the location of the violation as a dotted path into the
// document, e.g. "tables.AOT_TIME.0.UID". Used for YAML line lookups.
func (e *ValidationError) Path() string {
	if e.Table == "" {
		if e.Field == "" {
			return "header"
		}
		return "header." + e.Field
	}
	path := "tables." + e.Table
	if e.Row >= 0 {
		path += fmt.Sprintf(".%d", e.Row)
	}
	if e.Field != "" && e.Row >= 0 {
		path += "." + e.Field
	}
	return path
}

func (e *ValidationError) kindName() string {
	if e.Kind == nil {
		return "validation error"
	}
	return e.Kind.Error()
}

func (e *ValidationError) location() string {
	switch {
	case e.Table == "" && e.Field == "":
		return "header"
	case e.Table == "":
		return "header." + e.Field
	case e.Row >= 0 && e.Field != "":
		return fmt.Sprintf("%s[%d].%s", e.Table, e.Row, e.Field)
	case e.Row >= 0:
		return fmt.Sprintf("%s[%d]", e.Table, e.Row)
	case e.Field != "":
		return fmt.Sprintf("%s.%s", e.Table, e.Field)
	default:
		return e.Table
	}
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error returns all validation errors formatted with clear separation
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("found %d validation errors:\n", len(e)))
	for i := range e {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e[i].Error()))
	}
	return buf.String()
}

// Unwrap exposes every contained violation to errors.Is and errors.As
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i := range e {
		errs[i] = &e[i]
	}
	return errs
}

// AsValidationErrors flattens err into a list of violations. A single
// *ValidationError yields a one-element list; other errors yield nil.
func AsValidationErrors(err error) ValidationErrors {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return ValidationErrors{*one}
	}
	return nil
}
