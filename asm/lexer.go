package asm

import (
	"fmt"
	"strconv"

	"github.com/jacmba/iridium-vm/opcode"
)

// lexer turns raw assembly text into a flat token stream. It performs no
// validation of instruction shape — that's the parser's job — only
// classification of individual words into the token sum type.
type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(text string) *lexer {
	return &lexer{src: []byte(text), pos: 0, line: 1}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() byte {
	return l.src[l.pos]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (l *lexer) skipWhitespace() {
	for !l.eof() && isWhitespace(l.peek()) {
		if l.peek() == '\n' {
			l.line++
		}
		l.pos++
	}
}

func isIdentChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// tokenize consumes the entire source and returns every token it finds, in
// order. It fails only on a malformed word (e.g. "#abc", a quote with no
// closing quote, or a bare "#"/"$"/"@" with nothing following) — spec.md's
// parse-error surface.
func (l *lexer) tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.eof() {
			return tokens, nil
		}

		line := l.line
		if l.peek() == '\'' {
			tok, err := l.lexString(line)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		word := l.scanWord()
		tok, err := classifyWord(word, line)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

// scanWord reads a run of non-whitespace bytes.
func (l *lexer) scanWord() string {
	start := l.pos
	for !l.eof() && !isWhitespace(l.peek()) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

// lexString reads a single-quoted IR string literal: a leading quote, any
// run of characters except a quote, and a closing quote. The literal may
// contain embedded whitespace.
func (l *lexer) lexString(line int) (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	for {
		if l.eof() {
			return Token{}, fmt.Errorf("asm: line %d: unterminated string literal", line)
		}
		c := l.peek()
		if c == '\n' {
			l.line++
		}
		l.pos++
		if c == '\'' {
			return Token{Kind: KindString, Line: line, Text: string(l.src[start+1 : l.pos-1])}, nil
		}
	}
}

// classifyWord maps a whitespace-delimited word to its token kind.
func classifyWord(word string, line int) (Token, error) {
	if word == "" {
		return Token{}, fmt.Errorf("asm: line %d: empty token", line)
	}

	switch word[0] {
	case '#':
		digits := word[1:]
		if digits == "" || !allDigits(digits) {
			return Token{}, fmt.Errorf("asm: line %d: malformed integer operand %q", line, word)
		}
		v, err := strconv.ParseInt(digits, 10, 32)
		if err != nil {
			return Token{}, fmt.Errorf("asm: line %d: integer operand %q out of range: %w", line, word, err)
		}
		return Token{Kind: KindInteger, Line: line, Integer: int32(v)}, nil

	case '$':
		digits := word[1:]
		if digits == "" || !allDigits(digits) {
			return Token{}, fmt.Errorf("asm: line %d: malformed register operand %q", line, word)
		}
		v, err := strconv.ParseUint(digits, 10, 8)
		if err != nil {
			return Token{}, fmt.Errorf("asm: line %d: register operand %q out of range: %w", line, word, err)
		}
		return Token{Kind: KindRegister, Line: line, Register: byte(v)}, nil

	case '@':
		name := word[1:]
		if name == "" || !allIdentChars(name) {
			return Token{}, fmt.Errorf("asm: line %d: malformed label usage %q", line, word)
		}
		return Token{Kind: KindLabelUsage, Line: line, Name: name}, nil

	case '.':
		name := word[1:]
		if name == "" || !allIdentChars(name) {
			return Token{}, fmt.Errorf("asm: line %d: malformed directive %q", line, word)
		}
		return Token{Kind: KindDirective, Line: line, Name: name}, nil
	}

	if len(word) > 1 && word[len(word)-1] == ':' {
		name := word[:len(word)-1]
		if allIdentChars(name) {
			return Token{Kind: KindLabelDecl, Line: line, Name: name}, nil
		}
		return Token{}, fmt.Errorf("asm: line %d: malformed label declaration %q", line, word)
	}

	// Anything else is an opcode mnemonic. Unknown mnemonics deliberately
	// decode to Illegal rather than failing the parse (spec.md §4.1).
	return Token{Kind: KindOp, Line: line, Op: opcode.FromMnemonic(word)}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func allIdentChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
