// Based on design first introduced in: http://blog.golang.org/two-go-talks-lexical-scanning-in-go-and

package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EOFRUNE is returned by next once the input is exhausted.
const EOFRUNE = -1

// Lexeme represents a token returned from scanning the contents of a file.
type Lexeme struct {
	Kind     TokenType // The type of this lexeme.
	Position int       // The starting byte offset of this token in the input string.
	Line     int       // 1-based line of the first rune.
	Column   int       // 1-based column (in runes) of the first rune.
	Value    string    // The textual value of this token.
	Error    string    // The error associated with the lexeme, if any.
}

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*Lexer) stateFn

// Lexer holds the state of the scanner.
type Lexer struct {
	input   string   // the string being scanned
	pos     int      // current position in the input
	start   int      // start position of this token
	width   int      // width of last rune read from input
	line    int      // line of pos
	col     int      // column of pos
	sLine   int      // line of start
	sCol    int      // column of start
	prevCol int      // column before the last rune read, for backup across newlines
	tokens  []Lexeme // scanned lexemes
	index   int      // next token handed out by NextToken
}

// Lex scans the whole input and returns a lexer positioned at the first token.
func Lex(input string) *Lexer {
	l := &Lexer{input: input, line: 1, col: 1, sLine: 1, sCol: 1}
	for state := lexSource; state != nil; {
		state = state(l)
	}
	return l
}

// NextToken returns the next token. Once the stream is exhausted it keeps
// returning the final EOF or error token.
func (l *Lexer) NextToken() Lexeme {
	if l.index >= len(l.tokens) {
		return l.tokens[len(l.tokens)-1]
	}
	token := l.tokens[l.index]
	l.index++
	return token
}

// PeekToken returns the count-th upcoming token without consuming it.
func (l *Lexer) PeekToken(count int) Lexeme {
	if count < 1 {
		panic(fmt.Sprintf("Expected count > 1, received: %v", count))
	}
	idx := l.index + count - 1
	if idx >= len(l.tokens) {
		return l.tokens[len(l.tokens)-1]
	}
	return l.tokens[idx]
}

// Tokens returns every scanned lexeme, ending with EOF or an error.
func (l *Lexer) Tokens() []Lexeme {
	return l.tokens
}

// next returns the next rune in the input.
func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return EOFRUNE
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	l.prevCol = l.col
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// invalid reports whether r, the rune just consumed, was a byte that is not
// valid UTF-8.
func (l *Lexer) invalid(r rune) bool {
	return r == utf8.RuneError && l.width == 1
}

// peek returns but does not consume the next rune in the input.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return EOFRUNE
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *Lexer) backup() {
	if l.width == 0 {
		return
	}
	l.pos -= l.width
	if l.input[l.pos] == '\n' {
		l.line--
	}
	l.col = l.prevCol
	l.width = 0
}

// value returns the current value of the token in the lexer.
func (l *Lexer) value() string {
	return l.input[l.start:l.pos]
}

// emit records a token and moves the start position past it.
func (l *Lexer) emit(t TokenType) {
	l.tokens = append(l.tokens, Lexeme{
		Kind:     t,
		Position: l.start,
		Line:     l.sLine,
		Column:   l.sCol,
		Value:    l.value(),
	})
	l.ignore()
}

// ignore skips over the pending input.
func (l *Lexer) ignore() {
	l.start = l.pos
	l.sLine = l.line
	l.sCol = l.col
}

// errorf records an error token and terminates the scan by returning nil.
func (l *Lexer) errorf(currentRune rune, format string, args ...interface{}) stateFn {
	value := ""
	if currentRune != EOFRUNE {
		value = string(currentRune)
	}
	l.tokens = append(l.tokens, Lexeme{
		Kind:     TokenTypeError,
		Position: l.start,
		Line:     l.sLine,
		Column:   l.sCol,
		Value:    value,
		Error:    fmt.Sprintf(format, args...),
	})
	return nil
}

// accept consumes the next rune if it's from the valid set.
func (l *Lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *Lexer) acceptRun(valid string) int {
	count := 0
	for l.accept(valid) {
		count++
	}
	return count
}

// hasPrefix reports whether the unread input starts with value.
func (l *Lexer) hasPrefix(value string) bool {
	return strings.HasPrefix(l.input[l.pos:], value)
}

// lexSource scans until EOFRUNE
func lexSource(l *Lexer) stateFn {
	return lexerEntrypoint(l)
}
