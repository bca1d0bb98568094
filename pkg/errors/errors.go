// Package errors provides the typed error model shared by the Nessus parsing packages.
//
// Field-level coercions never produce errors. Only load-bearing conditions do:
// a missing required attribute, an unparseable patch date, or a document that
// is not a Nessus v2 report.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Base Error Types
// =============================================================================

// Error is the base error type for all parsing errors.
type Error struct {
	// Kind indicates the category of error
	Kind Kind

	// Op is the operation being performed (e.g., "nessus.Event.Severity")
	Op string

	// Selector is the wire field involved, if any (e.g., "severity")
	Selector string

	// PluginID identifies the finding when it is already known
	PluginID string

	// Message is a human-readable description
	Message string

	// Err is the underlying error
	Err error
}

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindMissingRequiredField
	KindMalformedDate
	KindMalformedDocument
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindMissingRequiredField:
		return "missing_required_field"
	case KindMalformedDate:
		return "malformed_date"
	case KindMalformedDocument:
		return "malformed_document"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	if e.Selector != "" {
		fmt.Fprintf(&b, " (field %q", e.Selector)
		if e.PluginID != "" {
			fmt.Fprintf(&b, ", plugin %s", e.PluginID)
		}
		b.WriteString(")")
	} else if e.PluginID != "" {
		fmt.Fprintf(&b, " (plugin %s)", e.PluginID)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// =============================================================================
// Constructors
// =============================================================================

// E constructs an Error from the given arguments.
// Arguments can be: Kind, string (Op or Message), error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Message = a
			}
		case error:
			e.Err = a
		}
	}
	return e
}

// MissingField reports an absent required attribute.
func MissingField(op, selector, pluginID string) error {
	return &Error{
		Kind:     KindMissingRequiredField,
		Op:       op,
		Selector: selector,
		PluginID: pluginID,
		Message:  "required field is missing",
	}
}

// Malformed reports a present field whose text cannot be interpreted.
func Malformed(kind Kind, op, selector, pluginID string, err error) error {
	return &Error{
		Kind:     kind,
		Op:       op,
		Selector: selector,
		PluginID: pluginID,
		Message:  "cannot parse field",
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: GetKind(err), Op: op, Err: err}
}

// =============================================================================
// Error Checkers
// =============================================================================

// GetKind returns the Kind of the error, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsMissingRequiredField checks if a required field was absent.
func IsMissingRequiredField(err error) bool {
	return GetKind(err) == KindMissingRequiredField
}

// IsMalformedDate checks if a patch publication date could not be parsed.
func IsMalformedDate(err error) bool {
	return GetKind(err) == KindMalformedDate
}

// IsMalformedDocument checks if the document or a required field is malformed.
func IsMalformedDocument(err error) bool {
	return GetKind(err) == KindMalformedDocument
}

// Selector returns the innermost wire field recorded on err's chain, if any.
func Selector(err error) string {
	var e *Error
	for errors.As(err, &e) {
		if e.Selector != "" {
			return e.Selector
		}
		err = e.Err
	}
	return ""
}

// =============================================================================
// Common Errors
// =============================================================================

var (
	// ErrMissingRequiredField matches any missing required field error.
	ErrMissingRequiredField = &Error{Kind: KindMissingRequiredField, Message: "required field is missing"}

	// ErrMalformedDate matches any unparseable patch publication date.
	ErrMalformedDate = &Error{Kind: KindMalformedDate, Message: "malformed date"}

	// ErrMalformedDocument matches documents that are not Nessus v2 reports.
	ErrMalformedDocument = &Error{Kind: KindMalformedDocument, Message: "malformed document"}

	// ErrInvalidInput is returned for nil or oversized input.
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)
