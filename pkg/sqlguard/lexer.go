package sqlguard

import (
	"unicode"
	"unicode/utf8"
)

// TokenType classifies a lexed token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWord
	TokenQuotedIdent
	TokenString
	TokenNumber
	TokenComment
	TokenSemicolon
	TokenSymbol
	// TokenIllegal is a quoted run this lexer cannot read the same way every
	// supported driver does. It swallows the rest of the input.
	TokenIllegal
)

// Token is one lexical unit of a statement.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// Lexer splits a statement into words, literals and punctuation.
// It only knows enough SQL to tell identifiers apart from string contents.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current rune, 0 at EOF
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken returns the next token, TokenEOF once the input is exhausted.
func (l *Lexer) NextToken() Token {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
	start := l.pos

	switch {
	case l.ch == 0 && l.pos >= len(l.input):
		return Token{Type: TokenEOF, Offset: start}
	case l.ch == '\'':
		if lit, ok := l.readQuoted('\''); ok {
			return Token{Type: TokenString, Literal: lit, Offset: start}
		}
		return l.illegal(start)
	case l.ch == '"' || l.ch == '`':
		if lit, ok := l.readQuoted(l.ch); ok {
			return Token{Type: TokenQuotedIdent, Literal: lit, Offset: start}
		}
		return l.illegal(start)
	case l.ch == '-' && l.peekChar() == '-':
		return Token{Type: TokenComment, Literal: l.readLineComment(), Offset: start}
	case l.ch == '/' && l.peekChar() == '*':
		return Token{Type: TokenComment, Literal: l.readBlockComment(), Offset: start}
	case l.ch == '#':
		return Token{Type: TokenComment, Literal: l.readLineComment(), Offset: start}
	case l.ch == ';':
		l.readChar()
		return Token{Type: TokenSemicolon, Literal: ";", Offset: start}
	case isDigit(l.ch):
		return Token{Type: TokenNumber, Literal: l.readNumber(), Offset: start}
	case isIdentStart(l.ch):
		return Token{Type: TokenWord, Literal: l.readWord(), Offset: start}
	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenSymbol, Literal: string(ch), Offset: start}
	}
}

// readQuoted consumes a quoted run and returns its unescaped contents.
// A doubled quote inside the run stands for the quote itself. The run is not
// ok when it is unterminated or holds a backslash: MySQL treats \' as an
// escaped quote where Postgres and SQLite end the literal, so such a run has
// no single reading.
func (l *Lexer) readQuoted(quote rune) (string, bool) {
	l.readChar() // opening quote
	var out []rune
	for {
		if l.ch == 0 && l.pos >= len(l.input) {
			return string(out), false
		}
		if l.ch == '\\' {
			return string(out), false
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				out = append(out, quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return string(out), true
		}
		out = append(out, l.ch)
		l.readChar()
	}
}

// illegal consumes the remaining input into a TokenIllegal.
func (l *Lexer) illegal(start int) Token {
	l.pos, l.readPos, l.ch = len(l.input), len(l.input), 0
	return Token{Type: TokenIllegal, Literal: l.input[start:], Offset: start}
}

func (l *Lexer) readLineComment() string {
	start := l.pos
	for !(l.ch == 0 && l.pos >= len(l.input)) && l.ch != '\n' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readBlockComment() string {
	start := l.pos
	l.readChar()
	l.readChar()
	for !(l.ch == 0 && l.pos >= len(l.input)) {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readWord() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}
