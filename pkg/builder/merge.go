package builder

import (
	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/schema/render"
)

// merger applies the per-kind rules for the declarations of one fragment.
// outcome is set by every successful visit.
type merger struct {
	b       *Builder
	origin  string
	outcome Outcome
}

var _ schema.Visitor = (*merger)(nil)

func (m *merger) VisitDatasource(d *schema.Datasource) error {
	b := m.b
	if b.datasource == nil {
		b.datasource = b.appendDeclaration(m.origin, d).(*schema.Datasource)
		m.outcome = OutcomeAppended
		return nil
	}

	same, existing, incoming := b.equal(b.datasource, d)
	if !same {
		return &ConflictError{
			Code:              CodeDatasourceConflict,
			Kind:              schema.KindDatasource,
			Name:              d.Name,
			ExistingKind:      schema.KindDatasource,
			ExistingName:      b.datasource.Name,
			FirstOrigin:       b.origin(schema.KindDatasource, b.datasource.Name, ""),
			ConflictingOrigin: m.origin,
			Existing:          existing,
			Incoming:          incoming,
		}
	}
	m.outcome = OutcomeDeduplicated
	return nil
}

func (m *merger) VisitGenerator(g *schema.Generator) error {
	return m.equalOrReject(g, CodeGeneratorConflict)
}

func (m *merger) VisitTypeAlias(a *schema.TypeAlias) error {
	return m.equalOrReject(a, CodeTypeAliasConflict)
}

func (m *merger) VisitEnum(e *schema.Enum) error {
	b := m.b
	current, found, err := m.existing(e)
	if err != nil {
		return err
	}
	if !found {
		owned := b.appendDeclaration(m.origin, e).(*schema.Enum)
		for _, v := range owned.Values {
			b.provenance.record(Key{Kind: schema.KindEnum, Name: owned.Name, Member: v.Name}, m.origin)
		}
		m.outcome = OutcomeAppended
		return nil
	}

	target := current.(*schema.Enum)
	changed := false
	for _, value := range e.Values {
		idx := target.Value(value.Name)
		if idx < 0 {
			target.Values = append(target.Values, value.Clone())
			b.provenance.record(Key{Kind: schema.KindEnum, Name: target.Name, Member: value.Name}, m.origin)
			changed = true
			continue
		}

		have := target.Values[idx]
		if same, _, _ := b.equal(enumWithValue(target.Name, have), enumWithValue(target.Name, value)); same {
			continue
		}

		firstOrigin := b.origin(schema.KindEnum, target.Name, value.Name)
		if b.strictEnums {
			return &ConflictError{
				Code:              CodeEnumValueConflict,
				Kind:              schema.KindEnum,
				Name:              target.Name,
				Member:            value.Name,
				ExistingKind:      schema.KindEnum,
				ExistingName:      target.Name,
				FirstOrigin:       firstOrigin,
				ConflictingOrigin: m.origin,
				Existing:          render.EnumValue(have),
				Incoming:          render.EnumValue(value),
			}
		}

		w := Warning{
			Code:              WarningEnumValueMismatch,
			Kind:              schema.KindEnum,
			Name:              target.Name,
			Member:            value.Name,
			FirstOrigin:       firstOrigin,
			ConflictingOrigin: m.origin,
			Existing:          render.EnumValue(have),
			Incoming:          render.EnumValue(value),
		}
		b.warnings = append(b.warnings, w)
		b.logger.Warn().
			Str("enum", target.Name).
			Str("value", value.Name).
			Str("first_origin", firstOrigin).
			Str("origin", m.origin).
			Msg("Enum value declared with different attributes, keeping the first declaration")
	}

	if unionAttributes(&target.Attributes, e.Attributes) {
		changed = true
	}
	if adoptDocumentation(&target.Documentation, e.Documentation) {
		changed = true
	}
	m.setMerged(changed)
	return nil
}

func (m *merger) VisitModel(model *schema.Model) error {
	current, found, err := m.existing(model)
	if err != nil {
		return err
	}
	if !found {
		m.appendWithFields(model, model.Fields)
		return nil
	}

	target := current.(*schema.Model)
	changed, err := m.unionFields(target, &target.Fields, model.Fields, CodeModelConflict)
	if err != nil {
		return err
	}
	if unionAttributes(&target.Attributes, model.Attributes) {
		changed = true
	}
	if adoptDocumentation(&target.Documentation, model.Documentation) {
		changed = true
	}
	m.setMerged(changed)
	return nil
}

func (m *merger) VisitCompositeType(c *schema.CompositeType) error {
	current, found, err := m.existing(c)
	if err != nil {
		return err
	}
	if !found {
		m.appendWithFields(c, c.Fields)
		return nil
	}

	target := current.(*schema.CompositeType)
	changed, err := m.unionFields(target, &target.Fields, c.Fields, CodeCompositeTypeConflict)
	if err != nil {
		return err
	}
	if adoptDocumentation(&target.Documentation, c.Documentation) {
		changed = true
	}
	m.setMerged(changed)
	return nil
}

// existing returns the declaration already registered under decl's name in
// decl's namespace. A declaration of another kind is a KindConflict.
func (m *merger) existing(decl schema.Declaration) (schema.Declaration, bool, error) {
	current, ok := m.b.lookup(decl.Kind(), decl.DeclName())
	if !ok {
		return nil, false, nil
	}
	if current.Kind() != decl.Kind() {
		return nil, false, &ConflictError{
			Code:              CodeKindConflict,
			Kind:              decl.Kind(),
			Name:              decl.DeclName(),
			ExistingKind:      current.Kind(),
			ExistingName:      current.DeclName(),
			FirstOrigin:       m.b.origin(current.Kind(), current.DeclName(), ""),
			ConflictingOrigin: m.origin,
		}
	}
	return current, true, nil
}

func (m *merger) equalOrReject(decl schema.Declaration, code ConflictCode) error {
	b := m.b
	current, found, err := m.existing(decl)
	if err != nil {
		return err
	}
	if !found {
		b.appendDeclaration(m.origin, decl)
		m.outcome = OutcomeAppended
		return nil
	}

	same, existing, incoming := b.equal(current, decl)
	if !same {
		return &ConflictError{
			Code:              code,
			Kind:              decl.Kind(),
			Name:              decl.DeclName(),
			ExistingKind:      current.Kind(),
			ExistingName:      current.DeclName(),
			FirstOrigin:       b.origin(current.Kind(), current.DeclName(), ""),
			ConflictingOrigin: m.origin,
			Existing:          existing,
			Incoming:          incoming,
		}
	}
	m.outcome = OutcomeDeduplicated
	return nil
}

func (m *merger) appendWithFields(decl schema.Declaration, fields []schema.Field) {
	m.b.appendDeclaration(m.origin, decl)
	for _, f := range fields {
		m.b.provenance.record(Key{Kind: decl.Kind(), Name: decl.DeclName(), Member: f.Name}, m.origin)
	}
	m.outcome = OutcomeAppended
}

// unionFields appends incoming fields missing from target. A field present
// on both sides must render identically.
func (m *merger) unionFields(target schema.Declaration, fields *[]schema.Field, incoming []schema.Field, code ConflictCode) (bool, error) {
	b := m.b
	kind, name := target.Kind(), target.DeclName()

	changed := false
	for _, field := range incoming {
		idx := indexOfField(*fields, field.Name)
		if idx < 0 {
			*fields = append(*fields, field.Clone())
			b.provenance.record(Key{Kind: kind, Name: name, Member: field.Name}, m.origin)
			changed = true
			continue
		}

		have := (*fields)[idx]
		if same, _, _ := b.equal(modelWithField(name, have), modelWithField(name, field)); same {
			continue
		}
		return false, &ConflictError{
			Code:              code,
			Kind:              kind,
			Name:              name,
			Member:            field.Name,
			ExistingKind:      kind,
			ExistingName:      name,
			FirstOrigin:       b.origin(kind, name, field.Name),
			ConflictingOrigin: m.origin,
			Existing:          render.Field(have),
			Incoming:          render.Field(field),
		}
	}
	return changed, nil
}

func (m *merger) setMerged(changed bool) {
	if changed {
		m.outcome = OutcomeMerged
	} else {
		m.outcome = OutcomeDeduplicated
	}
}

// unionAttributes appends incoming block attributes whose canonical text is
// not already present.
func unionAttributes(attrs *[]schema.Attribute, incoming []schema.Attribute) bool {
	changed := false
	for _, attr := range incoming {
		text := render.BlockAttribute(attr)
		present := false
		for _, have := range *attrs {
			if render.BlockAttribute(have) == text {
				present = true
				break
			}
		}
		if !present {
			*attrs = append(*attrs, attr.Clone())
			changed = true
		}
	}
	return changed
}

// adoptDocumentation keeps the first non-empty documentation.
func adoptDocumentation(doc *string, incoming string) bool {
	if *doc != "" || incoming == "" {
		return false
	}
	*doc = incoming
	return true
}

func indexOfField(fields []schema.Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// enumWithValue and modelWithField wrap a single member so that members are
// compared through the same renderer as whole declarations.
func enumWithValue(name string, value schema.EnumValue) schema.Declaration {
	return &schema.Enum{Name: name, Values: []schema.EnumValue{value}}
}

func modelWithField(name string, field schema.Field) schema.Declaration {
	return &schema.Model{Name: name, Fields: []schema.Field{field}}
}
