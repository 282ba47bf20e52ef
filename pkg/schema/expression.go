package schema

import "strings"

// Expression is a value on the right-hand side of a property or inside
// attribute arguments.
type Expression interface {
	// Source returns the canonical source form of the expression.
	Source() string

	cloneExpression() Expression
}

// StringValue is a double-quoted string literal.
type StringValue struct {
	Value string
}

// NumberValue is a numeric literal, kept as written.
type NumberValue struct {
	Literal string
}

// ConstantValue is a bare identifier, boolean or dotted path such as
// `Cascade`, `true` or `pg_trgm`.
type ConstantValue struct {
	Value string
}

// ArrayValue is a bracketed list of expressions.
type ArrayValue struct {
	Elements []Expression
}

// FunctionValue is a function call such as `env("DATABASE_URL")`.
type FunctionValue struct {
	Name      string
	Arguments []Argument
}

func (s StringValue) Source() string   { return quote(s.Value) }
func (n NumberValue) Source() string   { return n.Literal }
func (c ConstantValue) Source() string { return c.Value }

func (a ArrayValue) Source() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.Source()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (f FunctionValue) Source() string {
	return f.Name + "(" + ArgumentsSource(f.Arguments) + ")"
}

func (s StringValue) cloneExpression() Expression   { return s }
func (n NumberValue) cloneExpression() Expression   { return n }
func (c ConstantValue) cloneExpression() Expression { return c }

func (a ArrayValue) cloneExpression() Expression {
	out := ArrayValue{Elements: make([]Expression, len(a.Elements))}
	for i, el := range a.Elements {
		out.Elements[i] = CloneExpression(el)
	}
	return out
}

func (f FunctionValue) cloneExpression() Expression {
	return FunctionValue{Name: f.Name, Arguments: cloneArguments(f.Arguments)}
}

// CloneExpression deep-copies an expression. A nil expression stays nil.
func CloneExpression(e Expression) Expression {
	if e == nil {
		return nil
	}
	return e.cloneExpression()
}

// ArgumentsSource renders an argument list without the surrounding parens.
func ArgumentsSource(args []Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			parts[i] = arg.Name + ": " + arg.Value.Source()
		} else {
			parts[i] = arg.Value.Source()
		}
	}
	return strings.Join(parts, ", ")
}

// Source renders an attribute with the given prefix ("@" or "@@").
func (a Attribute) Source(prefix string) string {
	if a.Arguments == nil {
		return prefix + a.Name
	}
	return prefix + a.Name + "(" + ArgumentsSource(a.Arguments) + ")"
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
