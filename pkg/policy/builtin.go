package policy

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		primaryKeyPolicy(),
		datasourceRequiredPolicy(),
		datasourceURLPolicy(),
		namingConventionsPolicy(),
	}
}

// primaryKeyPolicy requires every model to be uniquely identifiable.
func primaryKeyPolicy() Policy {
	return Policy{
		Name:        "model-primary-key",
		Description: "Every model must declare an @id field, a @unique field, @@id or @@unique",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"models", "integrity"},
		Rego: `package aurora.policies.primary_key

import rego.v1

identity := {"id", "unique"}

deny contains violation if {
	some model in input.models
	not ignored(model)
	not has_identity(model)
	violation := {
		"message": sprintf("model %s has no @id or @unique field and no @@id or @@unique attribute", [model.name]),
		"declaration": sprintf("model %s", [model.name]),
	}
}

has_identity(model) if {
	some field in model.fields
	some attr in field.attributes
	attr.name in identity
}

has_identity(model) if {
	some attr in model.attributes
	attr.name in identity
}

ignored(model) if {
	some attr in model.attributes
	attr.name == "ignore"
}
`,
	}
}

// datasourceRequiredPolicy flags schemas without a datasource.
func datasourceRequiredPolicy() Policy {
	return Policy{
		Name:        "datasource-required",
		Description: "The consolidated schema should declare a datasource",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"datasource"},
		Rego: `package aurora.policies.datasource_required

import rego.v1

deny contains violation if {
	count(input.datasources) == 0
	violation := {"message": "schema does not declare a datasource"}
}
`,
	}
}

// datasourceURLPolicy keeps connection strings out of the schema.
func datasourceURLPolicy() Policy {
	return Policy{
		Name:        "datasource-url-env",
		Description: "Datasource URLs should be read from the environment with env()",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"datasource", "security"},
		Rego: `package aurora.policies.datasource_url

import rego.v1

url_keys := {"url", "directUrl", "shadowDatabaseUrl"}

deny contains violation if {
	some ds in input.datasources
	some key, value in ds.properties
	key in url_keys
	not startswith(value, "env(")
	violation := {
		"message": sprintf("datasource %s sets %s to a literal value, use env() instead", [ds.name, key]),
		"declaration": sprintf("datasource %s", [ds.name]),
	}
}
`,
	}
}

// namingConventionsPolicy reports names that break the usual conventions.
func namingConventionsPolicy() Policy {
	return Policy{
		Name:        "naming-conventions",
		Description: "Models, composite types and enums use PascalCase; enum values use UPPER_CASE",
		Severity:    SeverityInfo,
		Enabled:     true,
		Tags:        []string{"naming", "conventions"},
		Rego: `package aurora.policies.naming

import rego.v1

pascal_case := "^[A-Z][A-Za-z0-9]*$"

upper_case := "^[A-Z][A-Z0-9_]*$"

deny contains violation if {
	some model in input.models
	not regex.match(pascal_case, model.name)
	violation := {
		"message": sprintf("model name %s should be PascalCase", [model.name]),
		"declaration": sprintf("model %s", [model.name]),
	}
}

deny contains violation if {
	some typ in input.compositeTypes
	not regex.match(pascal_case, typ.name)
	violation := {
		"message": sprintf("type name %s should be PascalCase", [typ.name]),
		"declaration": sprintf("type %s", [typ.name]),
	}
}

deny contains violation if {
	some enum in input.enums
	not regex.match(pascal_case, enum.name)
	violation := {
		"message": sprintf("enum name %s should be PascalCase", [enum.name]),
		"declaration": sprintf("enum %s", [enum.name]),
	}
}

deny contains violation if {
	some enum in input.enums
	some value in enum.values
	not regex.match(upper_case, value.name)
	violation := {
		"message": sprintf("enum value %s.%s should be UPPER_CASE", [enum.name, value.name]),
		"declaration": sprintf("enum %s", [enum.name]),
	}
}
`,
	}
}
