package policy

import (
	"time"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for warnings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for errors that should block output.
	SeverityError Severity = "error"

	// SeverityCritical is for critical violations that must be addressed immediately.
	SeverityCritical Severity = "critical"
)

// validSeverity reports whether s is a known severity.
func validSeverity(s Severity) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Policy represents a policy rule with its Rego code. The module must
// define a `deny` set; each element is a message string or an object with
// "message" and optional "declaration" and "severity" keys.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional policy metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// LoadedAt is when the policy was read.
	LoadedAt time.Time `json:"loaded_at"`
}

// Input is the document shape policies see as `input`.
type Input struct {
	Datasources    []BlockInput     `json:"datasources"`
	Generators     []BlockInput     `json:"generators"`
	Enums          []EnumInput      `json:"enums"`
	Models         []ModelInput     `json:"models"`
	CompositeTypes []ModelInput     `json:"compositeTypes"`
	TypeAliases    []TypeAliasInput `json:"typeAliases"`
}

// BlockInput is a datasource or generator. Properties map each key to the
// source text of its value, e.g. `env("DATABASE_URL")`.
type BlockInput struct {
	Name       string            `json:"name"`
	Provider   string            `json:"provider"`
	Properties map[string]string `json:"properties"`
}

// EnumInput is an enum with its values.
type EnumInput struct {
	Name       string           `json:"name"`
	Values     []EnumValueInput `json:"values"`
	Attributes []AttributeInput `json:"attributes"`
}

// EnumValueInput is a single enum value.
type EnumValueInput struct {
	Name       string           `json:"name"`
	Attributes []AttributeInput `json:"attributes"`
}

// ModelInput is a model or composite type.
type ModelInput struct {
	Name          string           `json:"name"`
	Fields        []FieldInput     `json:"fields"`
	Attributes    []AttributeInput `json:"attributes"`
	Documentation string           `json:"documentation,omitempty"`
}

// FieldInput is a field of a model or composite type.
type FieldInput struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Optional    bool             `json:"optional"`
	List        bool             `json:"list"`
	Unsupported bool             `json:"unsupported"`
	Attributes  []AttributeInput `json:"attributes"`
}

// TypeAliasInput is a type alias.
type TypeAliasInput struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Attributes []AttributeInput `json:"attributes"`
}

// AttributeInput is an attribute with the source text of its arguments.
type AttributeInput struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}
