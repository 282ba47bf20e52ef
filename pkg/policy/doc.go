// Package policy lints consolidated schemas with Open Policy Agent (OPA).
//
// Policies are Rego modules that define a `deny` set. Each element of the
// set is a violation, either a message string or an object:
//
//	{"message": "...", "declaration": "model User", "severity": "error"}
//
// The input document is built from the aggregate schema by NewInput and has
// the keys datasources, generators, enums, models, compositeTypes and
// typeAliases. Attribute arguments and datasource properties are given as
// their source text, so `url = env("DATABASE_URL")` appears as the string
// `env("DATABASE_URL")`.
//
// # Usage
//
//	eng, err := policy.NewEngine(logger)
//	if err != nil {
//	    return err
//	}
//	if err := eng.LoadPolicies(ctx, []string{"./policies"}); err != nil {
//	    return err
//	}
//	result, err := eng.Evaluate(ctx, doc)
//
// # Built-in Policies
//
// The following policies are always loaded:
//
//  1. model-primary-key (error) - Every model has @id, @unique, @@id or @@unique
//  2. datasource-required (warning) - The schema declares a datasource
//  3. datasource-url-env (warning) - Datasource URLs use env()
//  4. naming-conventions (info) - PascalCase type names, UPPER_CASE enum values
//
// # Custom Policies
//
// A .rego file becomes a policy named after the file. Leading comments are
// its description and a `# severity: error` comment sets its default
// severity. A .json file holds a serialized Policy. Directories are walked
// recursively.
//
//	# Legacy models must be migrated.
//	# severity: error
//	package custom.legacy
//
//	import rego.v1
//
//	deny contains violation if {
//	    some model in input.models
//	    startswith(model.name, "Legacy")
//	    violation := {
//	        "message": sprintf("model %s is legacy", [model.name]),
//	        "declaration": sprintf("model %s", [model.name]),
//	    }
//	}
//
// # Severity Levels
//
//   - info: Informational messages
//   - warning: Issues that should be reviewed but don't block output
//   - error: Issues that block output
//   - critical: Severe issues requiring immediate attention
//
// Queries are prepared once per policy and reused for every evaluation.
package policy
