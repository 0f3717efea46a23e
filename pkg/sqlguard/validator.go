package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyStatement is returned for blank statements.
var ErrEmptyStatement = errors.New("empty statement")

// RejectedTokenError names the first token outside the allowlist.
type RejectedTokenError struct {
	Token  string
	Offset int
}

func (e *RejectedTokenError) Error() string {
	return fmt.Sprintf("token %q at offset %d is not allowed", e.Token, e.Offset)
}

// Validator accepts a statement only when every identifier in it is allowlisted.
// It checks identifier provenance, not grammar.
type Validator struct {
	allow map[string]struct{}
}

// NewValidator builds a validator over lower-cased allowed words.
func NewValidator(allow map[string]struct{}) *Validator {
	return &Validator{allow: allow}
}

// Validate returns nil when the statement passes, otherwise ErrEmptyStatement or a
// *RejectedTokenError for the first offending token.
//
// Comments, quoted runs holding a backslash or missing their closing quote, and
// any semicolon that does not end the statement are rejected, so a statement can
// neither hide text from this check nor chain a second statement.
func (v *Validator) Validate(statement string) error {
	if strings.TrimSpace(statement) == "" {
		return ErrEmptyStatement
	}

	lex := NewLexer(statement)
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case TokenEOF:
			return nil
		case TokenWord, TokenQuotedIdent:
			if _, ok := v.allow[strings.ToLower(tok.Literal)]; !ok {
				return &RejectedTokenError{Token: tok.Literal, Offset: tok.Offset}
			}
		case TokenComment, TokenIllegal:
			return &RejectedTokenError{Token: tok.Literal, Offset: tok.Offset}
		case TokenSemicolon:
			if next := lex.NextToken(); next.Type != TokenEOF {
				return &RejectedTokenError{Token: tok.Literal, Offset: tok.Offset}
			}
			return nil
		}
	}
}

// Tokens returns the identifier words of a statement, literals excluded.
func Tokens(statement string) []string {
	var words []string
	lex := NewLexer(statement)
	for tok := lex.NextToken(); tok.Type != TokenEOF; tok = lex.NextToken() {
		if tok.Type == TokenWord || tok.Type == TokenQuotedIdent {
			words = append(words, tok.Literal)
		}
	}
	return words
}

// LeadingVerb returns the lower-cased first word of a statement.
func LeadingVerb(statement string) string {
	lex := NewLexer(statement)
	for tok := lex.NextToken(); tok.Type != TokenEOF; tok = lex.NextToken() {
		if tok.Type == TokenWord {
			return strings.ToLower(tok.Literal)
		}
		if tok.Type != TokenSymbol {
			return ""
		}
	}
	return ""
}
