package builder

import (
	"errors"
	"fmt"

	"github.com/sabinadams/aurora/pkg/schema"
)

// ErrFinalized is returned by Register and Finalize once Finalize has run.
var ErrFinalized = errors.New("builder has already been finalized")

// ConflictCode identifies the merge rule that rejected a declaration.
type ConflictCode string

const (
	CodeDatasourceConflict    ConflictCode = "DATASOURCE_CONFLICT"
	CodeGeneratorConflict     ConflictCode = "GENERATOR_CONFLICT"
	CodeEnumValueConflict     ConflictCode = "ENUM_VALUE_CONFLICT"
	CodeModelConflict         ConflictCode = "MODEL_CONFLICT"
	CodeCompositeTypeConflict ConflictCode = "COMPOSITE_TYPE_CONFLICT"
	CodeTypeAliasConflict     ConflictCode = "TYPE_ALIAS_CONFLICT"
	CodeKindConflict          ConflictCode = "KIND_CONFLICT"
)

var conflictLabels = map[ConflictCode]string{
	CodeDatasourceConflict:    "datasource conflict",
	CodeGeneratorConflict:     "generator conflict",
	CodeEnumValueConflict:     "enum value conflict",
	CodeModelConflict:         "model conflict",
	CodeCompositeTypeConflict: "composite type conflict",
	CodeTypeAliasConflict:     "type alias conflict",
	CodeKindConflict:          "kind conflict",
}

// String returns a short human-readable label for the code.
func (c ConflictCode) String() string {
	if label, ok := conflictLabels[c]; ok {
		return label
	}
	return string(c)
}

// ConflictError reports two declarations that cannot be consolidated.
type ConflictError struct {
	Code ConflictCode `json:"code"`

	// Kind and Name identify the incoming declaration.
	Kind schema.Kind `json:"kind"`
	Name string      `json:"name"`

	// Member is the enum value or field name for member-level conflicts.
	Member string `json:"member,omitempty"`

	// ExistingKind and ExistingName identify the declaration already held.
	// They differ from Kind and Name for kind conflicts and for a second
	// datasource declared under another name.
	ExistingKind schema.Kind `json:"existingKind"`
	ExistingName string      `json:"existingName"`

	// FirstOrigin is the fragment that introduced the existing declaration;
	// ConflictingOrigin is the fragment being registered.
	FirstOrigin       string `json:"firstOrigin"`
	ConflictingOrigin string `json:"conflictingOrigin"`

	// Existing and Incoming are the canonical renderings that differ.
	Existing string `json:"existing,omitempty"`
	Incoming string `json:"incoming,omitempty"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	incoming := describe(e.Kind, e.Name, e.Member)
	existing := describe(e.ExistingKind, e.ExistingName, e.Member)

	switch {
	case e.Code == CodeKindConflict:
		return fmt.Sprintf("%s: %s in %s conflicts with %s declared in %s",
			e.Code, incoming, e.ConflictingOrigin, existing, e.FirstOrigin)
	case e.Code == CodeDatasourceConflict && e.Name != e.ExistingName:
		return fmt.Sprintf("%s: %s in %s conflicts with %s declared in %s; only one datasource may be declared",
			e.Code, incoming, e.ConflictingOrigin, existing, e.FirstOrigin)
	default:
		return fmt.Sprintf("%s: %s in %s differs from the one declared in %s",
			e.Code, incoming, e.ConflictingOrigin, e.FirstOrigin)
	}
}

// Is matches another *ConflictError with the same code, so callers can test
// errors.Is(err, &ConflictError{Code: CodeGeneratorConflict}).
func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WarningCode identifies a non-fatal consolidation finding.
type WarningCode string

// WarningEnumValueMismatch marks an enum value declared twice with different
// attributes or documentation. The first declaration is kept.
const WarningEnumValueMismatch WarningCode = "ENUM_VALUE_MISMATCH"

// Warning is a non-fatal finding recorded during consolidation.
type Warning struct {
	Code              WarningCode `json:"code"`
	Kind              schema.Kind `json:"kind"`
	Name              string      `json:"name"`
	Member            string      `json:"member,omitempty"`
	FirstOrigin       string      `json:"firstOrigin"`
	ConflictingOrigin string      `json:"conflictingOrigin"`
	Existing          string      `json:"existing,omitempty"`
	Incoming          string      `json:"incoming,omitempty"`
}

// String formats the warning for display.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s in %s differs from the one declared in %s; keeping %q",
		w.Code, describe(w.Kind, w.Name, w.Member), w.ConflictingOrigin, w.FirstOrigin, w.Existing)
}

func describe(kind schema.Kind, name, member string) string {
	subject := fmt.Sprintf("%s %q", kind, name)
	if member == "" {
		return subject
	}
	if kind == schema.KindEnum {
		return fmt.Sprintf("%s value %q", subject, member)
	}
	return fmt.Sprintf("%s field %q", subject, member)
}
