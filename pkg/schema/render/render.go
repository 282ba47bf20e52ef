// Package render produces the canonical textual form of schema documents.
//
// The output is deterministic: the same syntax tree always renders to the
// same bytes. The consolidation builder relies on this to decide whether two
// declarations are equal.
package render

import (
	"strings"

	"github.com/sabinadams/aurora/pkg/schema"
)

// Document renders a whole document. Declarations are separated by one
// blank line and the output ends with a newline. An empty document renders
// to an empty slice.
func Document(doc *schema.Document) []byte {
	sg := newSourceGenerator()
	if doc != nil {
		for _, decl := range doc.Declarations {
			sg.ensureBlankLine()
			sg.emitDeclaration(decl)
		}
	}
	return sg.buf.Bytes()
}

// Declaration renders a single declaration as a one-declaration document.
func Declaration(decl schema.Declaration) []byte {
	return Document(schema.NewDocument(decl))
}

// Field renders a single field line, used to compare fields of merged models.
func Field(field schema.Field) string {
	return strings.Join(trimRow(fieldRow(field)), " ") + docSuffix(field.Documentation)
}

// EnumValue renders a single enum value line.
func EnumValue(value schema.EnumValue) string {
	return strings.Join(trimRow(enumValueRow(value)), " ") + docSuffix(value.Documentation)
}

// BlockAttribute renders a block attribute (`@@...`).
func BlockAttribute(attr schema.Attribute) string {
	return attr.Source("@@")
}

func (sg *sourceGenerator) emitDeclaration(decl schema.Declaration) {
	// emitter never fails; the error return exists to satisfy schema.Visitor.
	_ = decl.Accept(&emitter{sg: sg})
}

type emitter struct {
	sg *sourceGenerator
}

func (e *emitter) VisitDatasource(d *schema.Datasource) error {
	e.sg.emitConfigBlock("datasource", d.Name, d.Documentation, d.Properties)
	return nil
}

func (e *emitter) VisitGenerator(g *schema.Generator) error {
	e.sg.emitConfigBlock("generator", g.Name, g.Documentation, g.Properties)
	return nil
}

func (e *emitter) VisitEnum(en *schema.Enum) error {
	sg := e.sg
	sg.appendDocumentation(en.Documentation)
	sg.append("enum " + en.Name + " {")
	sg.appendLine()
	sg.indent()

	rows := make([][]string, len(en.Values))
	for i, v := range en.Values {
		rows[i] = enumValueRow(v)
	}
	widths := columnWidths(rows)
	for i, v := range en.Values {
		sg.appendDocumentation(v.Documentation)
		sg.appendRow(rows[i], widths)
	}
	sg.emitBlockAttributes(en.Attributes)

	sg.dedent()
	sg.append("}")
	sg.appendLine()
	return nil
}

func (e *emitter) VisitCompositeType(c *schema.CompositeType) error {
	e.sg.emitFieldBlock("type", c.Name, c.Documentation, c.Fields, nil)
	return nil
}

func (e *emitter) VisitModel(m *schema.Model) error {
	e.sg.emitFieldBlock("model", m.Name, m.Documentation, m.Fields, m.Attributes)
	return nil
}

func (e *emitter) VisitTypeAlias(a *schema.TypeAlias) error {
	sg := e.sg
	sg.appendDocumentation(a.Documentation)
	line := "type " + a.Name + " = " + a.Type.String()
	if attrs := fieldAttributes(a.Attributes); attrs != "" {
		line += " " + attrs
	}
	sg.append(line)
	sg.appendLine()
	return nil
}

func (sg *sourceGenerator) emitConfigBlock(keyword, name, doc string, props []schema.Property) {
	sg.appendDocumentation(doc)
	sg.append(keyword + " " + name + " {")
	sg.appendLine()
	sg.indent()

	width := 0
	for _, p := range props {
		if len(p.Name) > width {
			width = len(p.Name)
		}
	}
	for _, p := range props {
		sg.append(p.Name + strings.Repeat(" ", width-len(p.Name)) + " = " + p.Value.Source())
		sg.appendLine()
	}

	sg.dedent()
	sg.append("}")
	sg.appendLine()
}

func (sg *sourceGenerator) emitFieldBlock(keyword, name, doc string, fields []schema.Field, attrs []schema.Attribute) {
	sg.appendDocumentation(doc)
	sg.append(keyword + " " + name + " {")
	sg.appendLine()
	sg.indent()

	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = fieldRow(f)
	}
	widths := columnWidths(rows)
	for i, f := range fields {
		sg.appendDocumentation(f.Documentation)
		sg.appendRow(rows[i], widths)
	}
	sg.emitBlockAttributes(attrs)

	sg.dedent()
	sg.append("}")
	sg.appendLine()
}

func (sg *sourceGenerator) emitBlockAttributes(attrs []schema.Attribute) {
	if len(attrs) == 0 {
		return
	}
	if !strings.HasSuffix(sg.buf.String(), "{\n") {
		sg.ensureBlankLine()
	}
	for _, attr := range attrs {
		sg.append(BlockAttribute(attr))
		sg.appendLine()
	}
}

func fieldRow(f schema.Field) []string {
	return []string{f.Name, f.Type.String(), fieldAttributes(f.Attributes)}
}

func enumValueRow(v schema.EnumValue) []string {
	return []string{v.Name, fieldAttributes(v.Attributes)}
}

func fieldAttributes(attrs []schema.Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Source("@")
	}
	return strings.Join(parts, " ")
}

func trimRow(row []string) []string {
	last := len(row)
	for last > 1 && row[last-1] == "" {
		last--
	}
	return row[:last]
}

func docSuffix(doc string) string {
	if doc == "" {
		return ""
	}
	return " /// " + strings.ReplaceAll(doc, "\n", " /// ")
}
