package schema

func (d *Datasource) CloneDeclaration() Declaration {
	return &Datasource{
		Name:          d.Name,
		Properties:    cloneProperties(d.Properties),
		Documentation: d.Documentation,
	}
}

func (g *Generator) CloneDeclaration() Declaration {
	return &Generator{
		Name:          g.Name,
		Properties:    cloneProperties(g.Properties),
		Documentation: g.Documentation,
	}
}

func (e *Enum) CloneDeclaration() Declaration {
	values := make([]EnumValue, len(e.Values))
	for i, v := range e.Values {
		values[i] = v.Clone()
	}
	return &Enum{
		Name:          e.Name,
		Values:        values,
		Attributes:    CloneAttributes(e.Attributes),
		Documentation: e.Documentation,
	}
}

func (c *CompositeType) CloneDeclaration() Declaration {
	return &CompositeType{
		Name:          c.Name,
		Fields:        cloneFields(c.Fields),
		Documentation: c.Documentation,
	}
}

func (m *Model) CloneDeclaration() Declaration {
	return &Model{
		Name:          m.Name,
		Fields:        cloneFields(m.Fields),
		Attributes:    CloneAttributes(m.Attributes),
		Documentation: m.Documentation,
	}
}

func (a *TypeAlias) CloneDeclaration() Declaration {
	return &TypeAlias{
		Name:          a.Name,
		Type:          a.Type,
		Attributes:    CloneAttributes(a.Attributes),
		Documentation: a.Documentation,
	}
}

// Clone returns a deep copy of the value.
func (v EnumValue) Clone() EnumValue {
	return EnumValue{
		Name:          v.Name,
		Attributes:    CloneAttributes(v.Attributes),
		Documentation: v.Documentation,
	}
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	return Field{
		Name:          f.Name,
		Type:          f.Type,
		Attributes:    CloneAttributes(f.Attributes),
		Documentation: f.Documentation,
	}
}

// Clone returns a deep copy of the attribute.
func (a Attribute) Clone() Attribute {
	return Attribute{Name: a.Name, Arguments: cloneArguments(a.Arguments)}
}

// CloneAttributes deep-copies a list of attributes.
func CloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = a.Clone()
	}
	return out
}

// CloneDocument deep-copies every declaration of a document.
func CloneDocument(d *Document) *Document {
	if d == nil {
		return nil
	}
	out := &Document{Declarations: make([]Declaration, len(d.Declarations))}
	for i, decl := range d.Declarations {
		out.Declarations[i] = decl.CloneDeclaration()
	}
	return out
}

func cloneProperties(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{Name: p.Name, Value: CloneExpression(p.Value)}
	}
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

// cloneArguments keeps the nil/empty distinction: `@default()` and `@id`
// render differently.
func cloneArguments(args []Argument) []Argument {
	if args == nil {
		return nil
	}
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = Argument{Name: a.Name, Value: CloneExpression(a.Value)}
	}
	return out
}
