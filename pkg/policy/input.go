package policy

import (
	"github.com/sabinadams/aurora/pkg/schema"
)

// NewInput converts a document into policy input. Slices are never nil so
// policies can count them.
func NewInput(doc *schema.Document) *Input {
	in := &Input{
		Datasources:    []BlockInput{},
		Generators:     []BlockInput{},
		Enums:          []EnumInput{},
		Models:         []ModelInput{},
		CompositeTypes: []ModelInput{},
		TypeAliases:    []TypeAliasInput{},
	}
	if doc == nil {
		return in
	}

	for _, ds := range doc.Datasources() {
		in.Datasources = append(in.Datasources, blockInput(ds.Name, ds.Properties))
	}
	for _, g := range doc.Generators() {
		in.Generators = append(in.Generators, blockInput(g.Name, g.Properties))
	}
	for _, e := range doc.Enums() {
		values := make([]EnumValueInput, len(e.Values))
		for i, v := range e.Values {
			values[i] = EnumValueInput{Name: v.Name, Attributes: attributeInputs(v.Attributes)}
		}
		in.Enums = append(in.Enums, EnumInput{
			Name:       e.Name,
			Values:     values,
			Attributes: attributeInputs(e.Attributes),
		})
	}
	for _, m := range doc.Models() {
		in.Models = append(in.Models, ModelInput{
			Name:          m.Name,
			Fields:        fieldInputs(m.Fields),
			Attributes:    attributeInputs(m.Attributes),
			Documentation: m.Documentation,
		})
	}
	for _, c := range doc.CompositeTypes() {
		in.CompositeTypes = append(in.CompositeTypes, ModelInput{
			Name:          c.Name,
			Fields:        fieldInputs(c.Fields),
			Attributes:    []AttributeInput{},
			Documentation: c.Documentation,
		})
	}
	for _, a := range doc.TypeAliases() {
		in.TypeAliases = append(in.TypeAliases, TypeAliasInput{
			Name:       a.Name,
			Type:       a.Type.String(),
			Attributes: attributeInputs(a.Attributes),
		})
	}
	return in
}

func blockInput(name string, props []schema.Property) BlockInput {
	b := BlockInput{Name: name, Properties: make(map[string]string, len(props))}
	for _, p := range props {
		b.Properties[p.Name] = p.Value.Source()
		if p.Name == "provider" {
			if s, ok := p.Value.(schema.StringValue); ok {
				b.Provider = s.Value
			} else {
				b.Provider = p.Value.Source()
			}
		}
	}
	return b
}

func fieldInputs(fields []schema.Field) []FieldInput {
	out := make([]FieldInput, len(fields))
	for i, f := range fields {
		out[i] = FieldInput{
			Name:        f.Name,
			Type:        f.Type.Name,
			Optional:    f.Type.Arity == schema.Optional,
			List:        f.Type.Arity == schema.List,
			Unsupported: f.Type.Unsupported != "",
			Attributes:  attributeInputs(f.Attributes),
		}
	}
	return out
}

func attributeInputs(attrs []schema.Attribute) []AttributeInput {
	out := make([]AttributeInput, len(attrs))
	for i, a := range attrs {
		args := make([]string, len(a.Arguments))
		for j, arg := range a.Arguments {
			if arg.Name != "" {
				args[j] = arg.Name + ": " + arg.Value.Source()
			} else {
				args[j] = arg.Value.Source()
			}
		}
		out[i] = AttributeInput{Name: a.Name, Args: args}
	}
	return out
}
