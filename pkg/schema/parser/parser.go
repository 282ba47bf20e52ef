// Package parser parses schema fragment source into a schema.Document.
package parser

import (
	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/schema/lexer"
)

// Parse parses the given source into a document. On a syntax error it returns
// a *schema.DiagnosticsError tagged with origin.
func Parse(origin string, input string) (*schema.Document, error) {
	p := buildParser(input)
	doc := p.consumeTopLevel()
	if p.failed() {
		return nil, &schema.DiagnosticsError{
			Origin:      origin,
			Diagnostics: []schema.Diagnostic{*p.diag},
		}
	}
	return doc, nil
}

// ParseFragment parses and validates source into a fragment.
func ParseFragment(origin string, input string) (schema.Fragment, error) {
	doc, err := Parse(origin, input)
	if err != nil {
		return schema.Fragment{}, err
	}
	if err := schema.Validate(origin, doc); err != nil {
		return schema.Fragment{}, err
	}
	return schema.Fragment{Origin: origin, Document: doc}, nil
}

// consumeTopLevel attempts to consume the top-level declarations.
func (p *sourceParser) consumeTopLevel() *schema.Document {
	doc := schema.NewDocument()

	for !p.failed() {
		p.skipNewlines()
		if p.isToken(lexer.TokenTypeEOF) {
			break
		}

		// The top level is a set of blocks:
		// datasource db { ... }
		// generator client { ... }
		// enum Role { ... }
		// model User { ... }
		// type Address { ... }
		// type Email = String
		var decl schema.Declaration
		switch {
		case p.isKeyword("datasource"):
			decl = p.consumeDatasource()
		case p.isKeyword("generator"):
			decl = p.consumeGenerator()
		case p.isKeyword("enum"):
			decl = p.consumeEnum()
		case p.isKeyword("model"):
			decl = p.consumeModel()
		case p.isKeyword("type"):
			decl = p.consumeType()
		default:
			p.emitError("Unexpected %v at root level", p.describeCurrent())
		}

		if p.failed() {
			break
		}
		doc.Append(decl)
	}

	return doc
}

// consumeDatasource consumes `datasource name { key = value }`.
func (p *sourceParser) consumeDatasource() schema.Declaration {
	docs := p.takeDocs()
	p.consumeToken()
	name, props, ok := p.consumeConfigBlock()
	if !ok {
		return nil
	}
	return &schema.Datasource{Name: name, Properties: props, Documentation: docs}
}

// consumeGenerator consumes `generator name { key = value }`.
func (p *sourceParser) consumeGenerator() schema.Declaration {
	docs := p.takeDocs()
	p.consumeToken()
	name, props, ok := p.consumeConfigBlock()
	if !ok {
		return nil
	}
	return &schema.Generator{Name: name, Properties: props, Documentation: docs}
}

func (p *sourceParser) consumeConfigBlock() (string, []schema.Property, bool) {
	name, ok := p.consumeIdentifier()
	if !ok {
		return "", nil, false
	}
	if _, ok := p.consume(lexer.TokenTypeLeftBrace); !ok {
		return "", nil, false
	}

	var props []schema.Property
	for {
		p.skipNewlines()
		p.takeDocs()
		if _, ok := p.tryConsume(lexer.TokenTypeRightBrace); ok {
			return name, props, true
		}

		key, ok := p.consumeIdentifier()
		if !ok {
			return "", nil, false
		}
		if _, ok := p.consume(lexer.TokenTypeEquals); !ok {
			return "", nil, false
		}
		value, ok := p.consumeExpression()
		if !ok {
			return "", nil, false
		}
		props = append(props, schema.Property{Name: key, Value: value})

		if !p.consumeEndOfLine() {
			return "", nil, false
		}
	}
}

// consumeEnum consumes `enum Name { VALUE @attr  @@attr }`.
func (p *sourceParser) consumeEnum() schema.Declaration {
	enum := &schema.Enum{Documentation: p.takeDocs()}
	p.consumeToken()

	name, ok := p.consumeIdentifier()
	if !ok {
		return nil
	}
	enum.Name = name
	if _, ok := p.consume(lexer.TokenTypeLeftBrace); !ok {
		return nil
	}

	for {
		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeRightBrace); ok {
			p.takeDocs()
			return enum
		}

		if _, ok := p.tryConsume(lexer.TokenTypeAtAt); ok {
			p.takeDocs()
			attr, ok := p.consumeAttributeBody()
			if !ok {
				return nil
			}
			enum.Attributes = append(enum.Attributes, attr)
		} else {
			value := schema.EnumValue{Documentation: p.takeDocs()}
			if value.Name, ok = p.consumeIdentifier(); !ok {
				return nil
			}
			if value.Attributes, ok = p.consumeFieldAttributes(); !ok {
				return nil
			}
			value.Documentation = joinDocs(value.Documentation, p.takeDocs())
			enum.Values = append(enum.Values, value)
		}

		if !p.consumeEndOfLine() {
			return nil
		}
	}
}

// consumeModel consumes `model Name { fields  @@attrs }`.
func (p *sourceParser) consumeModel() schema.Declaration {
	model := &schema.Model{Documentation: p.takeDocs()}
	p.consumeToken()

	name, ok := p.consumeIdentifier()
	if !ok {
		return nil
	}
	model.Name = name

	fields, attrs, ok := p.consumeFieldBlock(true)
	if !ok {
		return nil
	}
	model.Fields = fields
	model.Attributes = attrs
	return model
}

// consumeType consumes either a composite type block or a type alias.
func (p *sourceParser) consumeType() schema.Declaration {
	docs := p.takeDocs()
	p.consumeToken()

	name, ok := p.consumeIdentifier()
	if !ok {
		return nil
	}

	if _, ok := p.tryConsume(lexer.TokenTypeEquals); ok {
		alias := &schema.TypeAlias{Name: name, Documentation: docs}
		if alias.Type, ok = p.consumeFieldType(); !ok {
			return nil
		}
		if alias.Attributes, ok = p.consumeFieldAttributes(); !ok {
			return nil
		}
		if !p.consumeEndOfLine() {
			return nil
		}
		p.takeDocs()
		return alias
	}

	fields, _, ok := p.consumeFieldBlock(false)
	if !ok {
		return nil
	}
	return &schema.CompositeType{Name: name, Fields: fields, Documentation: docs}
}

// consumeFieldBlock consumes `{ name Type @attr ... }`. Block attributes are
// only accepted when allowBlockAttributes is set.
func (p *sourceParser) consumeFieldBlock(allowBlockAttributes bool) ([]schema.Field, []schema.Attribute, bool) {
	if _, ok := p.consume(lexer.TokenTypeLeftBrace); !ok {
		return nil, nil, false
	}

	var fields []schema.Field
	var attrs []schema.Attribute
	for {
		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeRightBrace); ok {
			p.takeDocs()
			return fields, attrs, true
		}

		if p.isToken(lexer.TokenTypeAtAt) {
			if !allowBlockAttributes {
				p.emitError("Block attributes are not allowed in composite types")
				return nil, nil, false
			}
			p.consumeToken()
			p.takeDocs()
			attr, ok := p.consumeAttributeBody()
			if !ok {
				return nil, nil, false
			}
			attrs = append(attrs, attr)
		} else {
			field, ok := p.consumeField()
			if !ok {
				return nil, nil, false
			}
			fields = append(fields, field)
		}

		if !p.consumeEndOfLine() {
			return nil, nil, false
		}
	}
}

// consumeField consumes `name Type @attr(...)`.
func (p *sourceParser) consumeField() (schema.Field, bool) {
	field := schema.Field{Documentation: p.takeDocs()}

	var ok bool
	if field.Name, ok = p.consumeIdentifier(); !ok {
		return field, false
	}
	if field.Type, ok = p.consumeFieldType(); !ok {
		return field, false
	}
	if field.Attributes, ok = p.consumeFieldAttributes(); !ok {
		return field, false
	}

	// A trailing /// comment on the same line documents the field itself.
	field.Documentation = joinDocs(field.Documentation, p.takeDocs())
	return field, true
}

// consumeFieldType consumes `Name`, `Name?`, `Name[]` or `Unsupported("x")`.
func (p *sourceParser) consumeFieldType() (schema.FieldType, bool) {
	var ft schema.FieldType

	name, ok := p.consumeIdentifier()
	if !ok {
		return ft, false
	}
	ft.Name = name

	if name == "Unsupported" && p.isToken(lexer.TokenTypeLeftParen) {
		p.consumeToken()
		token, ok := p.consume(lexer.TokenTypeString)
		if !ok {
			return ft, false
		}
		native, err := lexer.Unquote(token.Value)
		if err != nil {
			p.emitError("Invalid string literal %s: %v", token.Value, err)
			return ft, false
		}
		ft.Unsupported = native
		if _, ok := p.consume(lexer.TokenTypeRightParen); !ok {
			return ft, false
		}
	}

	switch {
	case p.isToken(lexer.TokenTypeQuestion):
		p.consumeToken()
		ft.Arity = schema.Optional
	case p.isToken(lexer.TokenTypeLeftBracket):
		p.consumeToken()
		if _, ok := p.consume(lexer.TokenTypeRightBracket); !ok {
			return ft, false
		}
		ft.Arity = schema.List
	}

	if p.isToken(lexer.TokenTypeQuestion, lexer.TokenTypeLeftBracket) {
		p.emitError("A field type may be optional or a list, not both")
		return ft, false
	}

	return ft, true
}

// consumeFieldAttributes consumes any `@name(args)` attributes.
func (p *sourceParser) consumeFieldAttributes() ([]schema.Attribute, bool) {
	var attrs []schema.Attribute
	for p.isToken(lexer.TokenTypeAt) {
		p.consumeToken()
		attr, ok := p.consumeAttributeBody()
		if !ok {
			return nil, false
		}
		attrs = append(attrs, attr)
	}
	return attrs, true
}

// consumeAttributeBody consumes the dotted name and optional arguments of an
// attribute whose @ or @@ marker has already been consumed.
func (p *sourceParser) consumeAttributeBody() (schema.Attribute, bool) {
	var attr schema.Attribute

	name, ok := p.consumePath()
	if !ok {
		return attr, false
	}
	attr.Name = name

	if p.isToken(lexer.TokenTypeLeftParen) {
		if attr.Arguments, ok = p.consumeArguments(); !ok {
			return attr, false
		}
	}
	return attr, true
}

// consumePath consumes `ident(.ident)*`.
func (p *sourceParser) consumePath() (string, bool) {
	name, ok := p.consumeIdentifier()
	if !ok {
		return "", false
	}
	for p.isToken(lexer.TokenTypeDot) {
		p.consumeToken()
		part, ok := p.consumeIdentifier()
		if !ok {
			return "", false
		}
		name += "." + part
	}
	return name, true
}

// consumeArguments consumes `( [name:] expr, ... )`. The result is never nil
// so that `@default()` keeps its parentheses.
func (p *sourceParser) consumeArguments() ([]schema.Argument, bool) {
	if _, ok := p.consume(lexer.TokenTypeLeftParen); !ok {
		return nil, false
	}

	args := []schema.Argument{}
	for {
		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeRightParen); ok {
			return args, true
		}

		var arg schema.Argument
		if p.isToken(lexer.TokenTypeIdentifier) && p.lex.PeekToken(1).Kind == lexer.TokenTypeColon {
			arg.Name = p.currentToken.Value
			p.consumeToken()
			p.consumeToken()
		}

		value, ok := p.consumeExpression()
		if !ok {
			return nil, false
		}
		arg.Value = value
		args = append(args, arg)

		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeComma); ok {
			continue
		}
		if _, ok := p.consume(lexer.TokenTypeRightParen); !ok {
			return nil, false
		}
		return args, true
	}
}

// consumeExpression consumes a string, number, array, constant or function call.
func (p *sourceParser) consumeExpression() (schema.Expression, bool) {
	switch {
	case p.isToken(lexer.TokenTypeString):
		token := p.currentToken
		value, err := lexer.Unquote(token.Value)
		if err != nil {
			p.emitError("Invalid string literal %s: %v", token.Value, err)
			return nil, false
		}
		p.consumeToken()
		return schema.StringValue{Value: value}, true

	case p.isToken(lexer.TokenTypeNumber):
		token := p.currentToken
		p.consumeToken()
		return schema.NumberValue{Literal: token.Value}, true

	case p.isToken(lexer.TokenTypeLeftBracket):
		return p.consumeArray()

	case p.isToken(lexer.TokenTypeIdentifier):
		name, ok := p.consumePath()
		if !ok {
			return nil, false
		}
		if p.isToken(lexer.TokenTypeLeftParen) {
			args, ok := p.consumeArguments()
			if !ok {
				return nil, false
			}
			return schema.FunctionValue{Name: name, Arguments: args}, true
		}
		return schema.ConstantValue{Value: name}, true

	default:
		p.emitError("Expected a value, found %v", p.describeCurrent())
		return nil, false
	}
}

// consumeArray consumes `[expr, ...]`.
func (p *sourceParser) consumeArray() (schema.Expression, bool) {
	p.consumeToken()

	array := schema.ArrayValue{Elements: []schema.Expression{}}
	for {
		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeRightBracket); ok {
			return array, true
		}

		value, ok := p.consumeExpression()
		if !ok {
			return nil, false
		}
		array.Elements = append(array.Elements, value)

		p.skipNewlines()
		if _, ok := p.tryConsume(lexer.TokenTypeComma); ok {
			continue
		}
		if _, ok := p.consume(lexer.TokenTypeRightBracket); !ok {
			return nil, false
		}
		return array, true
	}
}

func joinDocs(leading, trailing string) string {
	switch {
	case leading == "":
		return trailing
	case trailing == "":
		return leading
	default:
		return leading + "\n" + trailing
	}
}
