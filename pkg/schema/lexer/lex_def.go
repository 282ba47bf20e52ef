package lexer

import (
	"strconv"
	"unicode"
)

// TokenType identifies the type of lexer lexemes.
type TokenType int

const (
	TokenTypeError TokenType = iota // error occurred; value is text of error

	TokenTypeEOF
	TokenTypeNewline
	TokenTypeComment    // // a comment
	TokenTypeDocComment // /// documentation

	TokenTypeIdentifier // helloworld
	TokenTypeString     // "hello"
	TokenTypeNumber     // 123, -1.5

	TokenTypeLeftBrace    // {
	TokenTypeRightBrace   // }
	TokenTypeLeftBracket  // [
	TokenTypeRightBracket // ]
	TokenTypeLeftParen    // (
	TokenTypeRightParen   // )

	TokenTypeEquals   // =
	TokenTypeQuestion // ?
	TokenTypeAt       // @
	TokenTypeAtAt     // @@
	TokenTypeComma    // ,
	TokenTypeColon    // :
	TokenTypeDot      // .
)

var tokenNames = map[TokenType]string{
	TokenTypeError:        "error",
	TokenTypeEOF:          "end of file",
	TokenTypeNewline:      "newline",
	TokenTypeComment:      "comment",
	TokenTypeDocComment:   "documentation comment",
	TokenTypeIdentifier:   "identifier",
	TokenTypeString:       "string",
	TokenTypeNumber:       "number",
	TokenTypeLeftBrace:    "'{'",
	TokenTypeRightBrace:   "'}'",
	TokenTypeLeftBracket:  "'['",
	TokenTypeRightBracket: "']'",
	TokenTypeLeftParen:    "'('",
	TokenTypeRightParen:   "')'",
	TokenTypeEquals:       "'='",
	TokenTypeQuestion:     "'?'",
	TokenTypeAt:           "'@'",
	TokenTypeAtAt:         "'@@'",
	TokenTypeComma:        "','",
	TokenTypeColon:        "':'",
	TokenTypeDot:          "'.'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// lexerEntrypoint scans until EOFRUNE
func lexerEntrypoint(l *Lexer) stateFn {
	for {
		switch r := l.next(); {
		case r == EOFRUNE:
			l.emit(TokenTypeEOF)
			return nil

		case r == '{':
			l.emit(TokenTypeLeftBrace)

		case r == '}':
			l.emit(TokenTypeRightBrace)

		case r == '[':
			l.emit(TokenTypeLeftBracket)

		case r == ']':
			l.emit(TokenTypeRightBracket)

		case r == '(':
			l.emit(TokenTypeLeftParen)

		case r == ')':
			l.emit(TokenTypeRightParen)

		case r == '=':
			l.emit(TokenTypeEquals)

		case r == '?':
			l.emit(TokenTypeQuestion)

		case r == ',':
			l.emit(TokenTypeComma)

		case r == ':':
			l.emit(TokenTypeColon)

		case r == '.':
			l.emit(TokenTypeDot)

		case r == '@':
			if l.accept("@") {
				l.emit(TokenTypeAtAt)
			} else {
				l.emit(TokenTypeAt)
			}

		case r == '"':
			return lexString

		case r == '-' || isDigit(r):
			l.backup()
			return lexNumber

		case isSpace(r):
			l.ignore()

		case r == '\n':
			l.emit(TokenTypeNewline)

		case isIdentifierStart(r):
			l.backup()
			return lexIdentifier

		case r == '/':
			if l.hasPrefix("/") {
				l.backup()
				return lexComment
			}
			return l.errorf(r, "unrecognized character at this location: %#U", r)

		default:
			return l.errorf(r, "unrecognized character at this location: %#U", r)
		}
	}
}

// lexComment scans a // or /// comment until the end of the line.
func lexComment(l *Lexer) stateFn {
	kind := TokenTypeComment
	if l.hasPrefix("///") && !l.hasPrefix("////") {
		kind = TokenTypeDocComment
	}
	for {
		r := l.next()
		if l.invalid(r) {
			return l.errorf(r, "invalid UTF-8 in comment")
		}
		if r == EOFRUNE || r == '\n' {
			l.backup()
			break
		}
	}
	l.emit(kind)
	return lexSource
}

// lexString scans a double-quoted string; the opening quote is consumed.
func lexString(l *Lexer) stateFn {
	for {
		r := l.next()
		if l.invalid(r) {
			return l.errorf(r, "invalid UTF-8 in string literal")
		}
		switch r {
		case '\\':
			next := l.next()
			if next == EOFRUNE || next == '\n' {
				return l.errorf(r, "unterminated string literal")
			}
			if l.invalid(next) {
				return l.errorf(next, "invalid UTF-8 in string literal")
			}
		case '"':
			l.emit(TokenTypeString)
			return lexSource
		case EOFRUNE, '\n':
			return l.errorf(r, "unterminated string literal")
		}
	}
}

// lexNumber scans an optionally negative integer or decimal.
func lexNumber(l *Lexer) stateFn {
	l.accept("-")
	if l.acceptRun("0123456789") == 0 {
		return l.errorf(l.peek(), "expected digits in number literal")
	}
	if l.hasPrefix(".") {
		l.next()
		if l.acceptRun("0123456789") == 0 {
			return l.errorf(l.peek(), "expected digits after decimal point")
		}
	}
	if r := l.peek(); isIdentifierStart(r) {
		return l.errorf(r, "unexpected character %#U in number literal", r)
	}
	l.emit(TokenTypeNumber)
	return lexSource
}

// lexIdentifier scans an identifier.
func lexIdentifier(l *Lexer) stateFn {
	for isIdentifierPart(l.peek()) {
		l.next()
	}
	l.emit(TokenTypeIdentifier)
	return lexSource
}

// Unquote returns the contents of a string lexeme.
func Unquote(literal string) (string, error) {
	return strconv.Unquote(literal)
}

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isIdentifierPart reports whether r is an alphabetic, digit, or underscore.
func isIdentifierPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
