package schema

import "fmt"

// Kind identifies the kind of a top-level declaration.
type Kind string

const (
	KindDatasource    Kind = "datasource"
	KindGenerator     Kind = "generator"
	KindEnum          Kind = "enum"
	KindCompositeType Kind = "type"
	KindModel         Kind = "model"
	KindTypeAlias     Kind = "type alias"
)

// Kinds lists every declaration kind in a stable order.
var Kinds = []Kind{
	KindDatasource,
	KindGenerator,
	KindEnum,
	KindCompositeType,
	KindModel,
	KindTypeAlias,
}

// Namespace returns the name namespace a kind belongs to. Models, enums,
// composite types and type aliases share the "type" namespace.
func (k Kind) Namespace() string {
	switch k {
	case KindDatasource:
		return "datasource"
	case KindGenerator:
		return "generator"
	default:
		return "type"
	}
}

// Visitor handles each declaration kind.
type Visitor interface {
	VisitDatasource(*Datasource) error
	VisitGenerator(*Generator) error
	VisitEnum(*Enum) error
	VisitCompositeType(*CompositeType) error
	VisitModel(*Model) error
	VisitTypeAlias(*TypeAlias) error
}

// Declaration is a top-level entry of a schema document.
type Declaration interface {
	// Kind returns the declaration kind.
	Kind() Kind

	// DeclName returns the declared name.
	DeclName() string

	// Accept dispatches to the Visitor method for this kind.
	Accept(Visitor) error

	// CloneDeclaration returns a deep copy.
	CloneDeclaration() Declaration

	declaration()
}

// Property is a `key = value` entry of a datasource or generator block.
type Property struct {
	Name  string
	Value Expression
}

// Datasource declares the database connection of a document.
type Datasource struct {
	Name          string
	Properties    []Property
	Documentation string
}

// Generator declares a downstream artifact generator.
type Generator struct {
	Name          string
	Properties    []Property
	Documentation string
}

// Property returns the value of the named property, if present.
func (d *Datasource) Property(name string) (Expression, bool) {
	return findProperty(d.Properties, name)
}

// Property returns the value of the named property, if present.
func (g *Generator) Property(name string) (Expression, bool) {
	return findProperty(g.Properties, name)
}

func findProperty(props []Property, name string) (Expression, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// EnumValue is a single value of an enum.
type EnumValue struct {
	Name          string
	Attributes    []Attribute
	Documentation string
}

// Enum declares a named set of values.
type Enum struct {
	Name          string
	Values        []EnumValue
	Attributes    []Attribute
	Documentation string
}

// Value returns the index of the named value, or -1.
func (e *Enum) Value(name string) int {
	for i, v := range e.Values {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Arity describes whether a field is required, optional or a list.
type Arity int

const (
	Required Arity = iota
	Optional
	List
)

// FieldType is the type of a field or type alias.
type FieldType struct {
	// Name is the referenced type name, or "Unsupported" when Unsupported is set.
	Name  string
	Arity Arity

	// Unsupported holds the native type string of `Unsupported("...")`.
	Unsupported string
}

// String renders the type the way it appears in source.
func (t FieldType) String() string {
	name := t.Name
	if t.Unsupported != "" {
		name = fmt.Sprintf("Unsupported(%s)", quote(t.Unsupported))
	}
	switch t.Arity {
	case Optional:
		return name + "?"
	case List:
		return name + "[]"
	default:
		return name
	}
}

// Field is a field of a model or composite type.
type Field struct {
	Name          string
	Type          FieldType
	Attributes    []Attribute
	Documentation string
}

// CompositeType declares an embedded type.
type CompositeType struct {
	Name          string
	Fields        []Field
	Documentation string
}

// Model declares a model.
type Model struct {
	Name          string
	Fields        []Field
	Attributes    []Attribute
	Documentation string
}

// Field returns the index of the named field, or -1.
func (m *Model) Field(name string) int {
	return fieldIndex(m.Fields, name)
}

// Field returns the index of the named field, or -1.
func (c *CompositeType) Field(name string) int {
	return fieldIndex(c.Fields, name)
}

func fieldIndex(fields []Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// TypeAlias declares an alias for a field type.
type TypeAlias struct {
	Name          string
	Type          FieldType
	Attributes    []Attribute
	Documentation string
}

// Argument is a positional or named argument of an attribute or function.
type Argument struct {
	// Name is empty for positional arguments.
	Name  string
	Value Expression
}

// Attribute is a field attribute (`@id`) or a block attribute (`@@map("x")`).
// Whether it is a block attribute follows from where it is attached.
type Attribute struct {
	// Name is the dotted attribute name without the leading @, e.g. "db.VarChar".
	Name      string
	Arguments []Argument
}

func (*Datasource) Kind() Kind    { return KindDatasource }
func (*Generator) Kind() Kind     { return KindGenerator }
func (*Enum) Kind() Kind          { return KindEnum }
func (*CompositeType) Kind() Kind { return KindCompositeType }
func (*Model) Kind() Kind         { return KindModel }
func (*TypeAlias) Kind() Kind     { return KindTypeAlias }

func (d *Datasource) DeclName() string    { return d.Name }
func (g *Generator) DeclName() string     { return g.Name }
func (e *Enum) DeclName() string          { return e.Name }
func (c *CompositeType) DeclName() string { return c.Name }
func (m *Model) DeclName() string         { return m.Name }
func (a *TypeAlias) DeclName() string     { return a.Name }

func (d *Datasource) Accept(v Visitor) error    { return v.VisitDatasource(d) }
func (g *Generator) Accept(v Visitor) error     { return v.VisitGenerator(g) }
func (e *Enum) Accept(v Visitor) error          { return v.VisitEnum(e) }
func (c *CompositeType) Accept(v Visitor) error { return v.VisitCompositeType(c) }
func (m *Model) Accept(v Visitor) error         { return v.VisitModel(m) }
func (a *TypeAlias) Accept(v Visitor) error     { return v.VisitTypeAlias(a) }

func (*Datasource) declaration()    {}
func (*Generator) declaration()     {}
func (*Enum) declaration()          {}
func (*CompositeType) declaration() {}
func (*Model) declaration()         {}
func (*TypeAlias) declaration()     {}

var (
	_ Declaration = (*Datasource)(nil)
	_ Declaration = (*Generator)(nil)
	_ Declaration = (*Enum)(nil)
	_ Declaration = (*CompositeType)(nil)
	_ Declaration = (*Model)(nil)
	_ Declaration = (*TypeAlias)(nil)
)
