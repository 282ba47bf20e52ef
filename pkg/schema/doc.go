// Package schema defines the syntax tree of a schema document and the fragments
// that the consolidation builder merges.
//
// # Declarations
//
// A document is an ordered list of top-level declarations. The set of
// declaration kinds is closed:
//
//   - Datasource: connection configuration, at most one per document
//   - Generator: a named downstream artifact producer
//   - Enum: a named list of values
//   - CompositeType: an embedded type with fields (`type Address { ... }`)
//   - Model: a table-like type with fields and block attributes
//   - TypeAlias: a named alias for a field type (`type Email = String`)
//
// Every declaration implements Accept(Visitor). Visitor has one method per
// kind, so a new kind cannot be added without every visitor handling it.
//
// # Fragments
//
// A Fragment pairs a parsed Document with the path of the file it came from.
// Fragments are treated as immutable: consumers that need to modify a
// declaration clone it first.
//
// # Validation
//
// Validate checks the internal consistency of a single fragment (duplicate
// names, missing providers, empty enums). It does not look across fragments.
package schema
