package engine

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of an error for exit code mapping.
type ErrorClass string

const (
	// ErrorClassPermanent indicates a run that cannot succeed without fixing
	// its inputs. Examples: unreadable configuration, invalid fragment.
	ErrorClassPermanent ErrorClass = "permanent"

	// ErrorClassConflict indicates fragments that cannot be consolidated.
	ErrorClassConflict ErrorClass = "conflict"

	// ErrorClassInformational indicates a run that stopped without failing,
	// such as one with no input fragments.
	ErrorClassInformational ErrorClass = "informational"
)

// Error codes.
const (
	ErrCodeConfigurationUnreadable = "CONFIGURATION_UNREADABLE"
	ErrCodeNoInputFragments        = "NO_INPUT_FRAGMENTS"
	ErrCodeFragmentInvalid         = "FRAGMENT_INVALID"
	ErrCodeDatasourceConflict      = "DATASOURCE_CONFLICT"
	ErrCodeGeneratorConflict       = "GENERATOR_CONFLICT"
	ErrCodeEnumValueConflict       = "ENUM_VALUE_CONFLICT"
	ErrCodeModelConflict           = "MODEL_CONFLICT"
	ErrCodeCompositeTypeConflict   = "COMPOSITE_TYPE_CONFLICT"
	ErrCodeTypeAliasConflict       = "TYPE_ALIAS_CONFLICT"
	ErrCodeKindConflict            = "KIND_CONFLICT"
	ErrCodePolicyViolation         = "POLICY_VIOLATION"
	ErrCodeOutputFailed            = "OUTPUT_FAILED"
)

// Error represents a classified run failure.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Code identifies the failure for programmatic handling.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Path is the file the error refers to, if any.
	Path string `json:"path,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`

	// Details contains additional context-specific information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same class and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewPermanentError creates a new permanent error.
func NewPermanentError(code, message string, err error) *Error {
	return &Error{
		Class:   ErrorClassPermanent,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConflictError creates a new conflict error.
func NewConflictError(code, message string, err error) *Error {
	return &Error{
		Class:   ErrorClassConflict,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewInformationalError creates a new informational error.
func NewInformationalError(code, message string) *Error {
	return &Error{
		Class:   ErrorClassInformational,
		Code:    code,
		Message: message,
	}
}

// WithPath adds the file the error refers to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithDetail adds a detail field to the error context.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsPermanent returns true if the error is classified as permanent.
func IsPermanent(err error) bool {
	return classOf(err) == ErrorClassPermanent
}

// IsConflict returns true if the error is classified as a conflict.
func IsConflict(err error) bool {
	return classOf(err) == ErrorClassConflict
}

// IsInformational returns true if the error is classified as informational.
func IsInformational(err error) bool {
	return classOf(err) == ErrorClassInformational
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func classOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}
