package schema

// Document is an ordered list of top-level declarations.
type Document struct {
	Declarations []Declaration
}

// Fragment is a parsed document tagged with the file it was read from.
type Fragment struct {
	Origin   string
	Document *Document
}

// NewDocument returns a document holding the given declarations.
func NewDocument(decls ...Declaration) *Document {
	return &Document{Declarations: decls}
}

// Len returns the number of declarations.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Declarations)
}

// Append adds a declaration at the end of the document.
func (d *Document) Append(decl Declaration) {
	d.Declarations = append(d.Declarations, decl)
}

// Find returns the first declaration of the given kind and name.
func (d *Document) Find(kind Kind, name string) (Declaration, bool) {
	if d == nil {
		return nil, false
	}
	for _, decl := range d.Declarations {
		if decl.Kind() == kind && decl.DeclName() == name {
			return decl, true
		}
	}
	return nil, false
}

// Datasources returns every datasource in declaration order.
func (d *Document) Datasources() []*Datasource {
	return collect[*Datasource](d)
}

// Generators returns every generator in declaration order.
func (d *Document) Generators() []*Generator {
	return collect[*Generator](d)
}

// Enums returns every enum in declaration order.
func (d *Document) Enums() []*Enum {
	return collect[*Enum](d)
}

// Models returns every model in declaration order.
func (d *Document) Models() []*Model {
	return collect[*Model](d)
}

// CompositeTypes returns every composite type in declaration order.
func (d *Document) CompositeTypes() []*CompositeType {
	return collect[*CompositeType](d)
}

// TypeAliases returns every type alias in declaration order.
func (d *Document) TypeAliases() []*TypeAlias {
	return collect[*TypeAlias](d)
}

func collect[T Declaration](d *Document) []T {
	if d == nil {
		return nil
	}
	var out []T
	for _, decl := range d.Declarations {
		if typed, ok := decl.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
