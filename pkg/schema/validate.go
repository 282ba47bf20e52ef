package schema

import "fmt"

// Validate checks a single document for internal consistency. It returns nil
// or a *DiagnosticsError listing every problem found, tagged with origin.
func Validate(origin string, doc *Document) error {
	v := &validator{seen: map[string]map[string]Kind{}}
	if doc != nil {
		for _, decl := range doc.Declarations {
			_ = decl.Accept(v)
		}
	}
	if len(v.diags) == 0 {
		return nil
	}
	return &DiagnosticsError{Origin: origin, Diagnostics: v.diags}
}

type validator struct {
	diags       []Diagnostic
	seen        map[string]map[string]Kind
	datasources int
}

func (v *validator) errorf(format string, args ...interface{}) {
	v.diags = append(v.diags, Diagnostic{Message: fmt.Sprintf(format, args...)})
}

func (v *validator) declare(kind Kind, name string) {
	ns := kind.Namespace()
	names, ok := v.seen[ns]
	if !ok {
		names = map[string]Kind{}
		v.seen[ns] = names
	}
	if prev, dup := names[name]; dup {
		if prev == kind {
			v.errorf("%s %q is declared more than once", kind, name)
		} else {
			v.errorf("%s %q conflicts with %s %q", kind, name, prev, name)
		}
		return
	}
	names[name] = kind
}

func (v *validator) requireProvider(kind Kind, name string, props []Property) {
	if _, ok := findProperty(props, "provider"); !ok {
		v.errorf("%s %q is missing the required provider property", kind, name)
	}
	seen := map[string]bool{}
	for _, p := range props {
		if seen[p.Name] {
			v.errorf("%s %q sets property %q more than once", kind, name, p.Name)
		}
		seen[p.Name] = true
	}
}

func (v *validator) checkFields(kind Kind, name string, fields []Field) {
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.Name] {
			v.errorf("field %q is declared more than once in %s %q", f.Name, kind, name)
		}
		seen[f.Name] = true
	}
}

func (v *validator) VisitDatasource(d *Datasource) error {
	v.datasources++
	if v.datasources > 1 {
		v.errorf("datasource %q: only one datasource may be declared", d.Name)
	}
	v.declare(KindDatasource, d.Name)
	v.requireProvider(KindDatasource, d.Name, d.Properties)
	return nil
}

func (v *validator) VisitGenerator(g *Generator) error {
	v.declare(KindGenerator, g.Name)
	v.requireProvider(KindGenerator, g.Name, g.Properties)
	return nil
}

func (v *validator) VisitEnum(e *Enum) error {
	v.declare(KindEnum, e.Name)
	if len(e.Values) == 0 {
		v.errorf("enum %q must declare at least one value", e.Name)
	}
	seen := map[string]bool{}
	for _, val := range e.Values {
		if seen[val.Name] {
			v.errorf("value %q is declared more than once in enum %q", val.Name, e.Name)
		}
		seen[val.Name] = true
	}
	return nil
}

func (v *validator) VisitCompositeType(c *CompositeType) error {
	v.declare(KindCompositeType, c.Name)
	v.checkFields(KindCompositeType, c.Name, c.Fields)
	return nil
}

func (v *validator) VisitModel(m *Model) error {
	v.declare(KindModel, m.Name)
	v.checkFields(KindModel, m.Name, m.Fields)
	return nil
}

func (v *validator) VisitTypeAlias(a *TypeAlias) error {
	v.declare(KindTypeAlias, a.Name)
	return nil
}
