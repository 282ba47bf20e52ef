package parser

import (
	"fmt"
	"strings"

	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/schema/lexer"
)

// sourceParser holds the state of the parser.
type sourceParser struct {
	lex          *lexer.Lexer  // a reference to the lexer used for tokenization
	currentToken lexer.Lexeme  // the current token
	docs         []string      // documentation lines awaiting the next item
	diag         *schema.Diagnostic
}

// buildParser returns a new sourceParser positioned at the first token.
func buildParser(input string) *sourceParser {
	p := &sourceParser{lex: lexer.Lex(input)}
	p.consumeToken()
	return p
}

// failed reports whether a parse error has been recorded.
func (p *sourceParser) failed() bool {
	return p.diag != nil
}

// emitError records the first parse error at the current token.
func (p *sourceParser) emitError(format string, args ...interface{}) {
	if p.diag != nil {
		return
	}
	message := fmt.Sprintf(format, args...)
	if p.currentToken.Kind == lexer.TokenTypeError {
		message = p.currentToken.Error
	}
	p.diag = &schema.Diagnostic{
		Line:    p.currentToken.Line,
		Column:  p.currentToken.Column,
		Message: message,
	}
}

// consumeToken advances the lexer forward, returning the next token. Plain
// comments are dropped; documentation comments are collected.
func (p *sourceParser) consumeToken() lexer.Lexeme {
	for {
		token := p.lex.NextToken()
		switch token.Kind {
		case lexer.TokenTypeComment:
			continue
		case lexer.TokenTypeDocComment:
			p.docs = append(p.docs, docText(token.Value))
			continue
		}
		p.currentToken = token
		return token
	}
}

// takeDocs returns and clears the pending documentation.
func (p *sourceParser) takeDocs() string {
	doc := strings.Join(p.docs, "\n")
	p.docs = nil
	return doc
}

// isToken returns true if the current token matches one of the types given.
func (p *sourceParser) isToken(types ...lexer.TokenType) bool {
	for _, kind := range types {
		if p.currentToken.Kind == kind {
			return true
		}
	}
	return false
}

// isKeyword returns true if the current token is an identifier matching keyword.
func (p *sourceParser) isKeyword(keyword string) bool {
	return p.isToken(lexer.TokenTypeIdentifier) && p.currentToken.Value == keyword
}

// tryConsume consumes the current token if it is of the given type.
func (p *sourceParser) tryConsume(kind lexer.TokenType) (lexer.Lexeme, bool) {
	token := p.currentToken
	if token.Kind != kind {
		return token, false
	}
	p.consumeToken()
	return token, true
}

// consume consumes an expected token or records an error.
func (p *sourceParser) consume(kind lexer.TokenType) (lexer.Lexeme, bool) {
	token, ok := p.tryConsume(kind)
	if !ok {
		p.emitError("Expected %v, found %v", kind, p.describeCurrent())
	}
	return token, ok
}

// consumeIdentifier consumes an expected identifier or records an error.
func (p *sourceParser) consumeIdentifier() (string, bool) {
	token, ok := p.tryConsume(lexer.TokenTypeIdentifier)
	if !ok {
		p.emitError("Expected identifier, found %v", p.describeCurrent())
		return "", false
	}
	return token.Value, true
}

// skipNewlines consumes any newline tokens.
func (p *sourceParser) skipNewlines() {
	for p.isToken(lexer.TokenTypeNewline) {
		p.consumeToken()
	}
}

// consumeEndOfLine consumes the newline ending a block member. A closing
// brace or the end of the file also ends the line without being consumed.
func (p *sourceParser) consumeEndOfLine() bool {
	if _, ok := p.tryConsume(lexer.TokenTypeNewline); ok {
		return true
	}
	if p.isToken(lexer.TokenTypeRightBrace, lexer.TokenTypeEOF) {
		return true
	}
	p.emitError("Expected end of line, found %v", p.describeCurrent())
	return false
}

func (p *sourceParser) describeCurrent() string {
	switch p.currentToken.Kind {
	case lexer.TokenTypeIdentifier, lexer.TokenTypeString, lexer.TokenTypeNumber:
		return fmt.Sprintf("%v %s", p.currentToken.Kind, p.currentToken.Value)
	default:
		return p.currentToken.Kind.String()
	}
}

// docText strips the /// marker and a single following space.
func docText(comment string) string {
	text := strings.TrimPrefix(comment, "///")
	text = strings.TrimPrefix(text, " ")
	return strings.TrimRight(text, " \t")
}
