package nlq

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalize folds full-width forms (？，１２３) to their ASCII equivalents and trims.
func normalize(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}

// isChinese reports whether text contains any Han character.
func isChinese(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// indexTerm finds term in lower-cased text. ASCII terms must sit on word boundaries
// where they start or end with a word character; other terms match anywhere.
func indexTerm(lower, term string) int {
	if term == "" {
		return -1
	}
	if !isASCII(term) {
		return strings.Index(lower, term)
	}
	offset := 0
	for {
		i := strings.Index(lower[offset:], term)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(term)
		leftOK := !isWordByte(term[0]) || start == 0 || !isWordByte(lower[start-1])
		rightOK := !isWordByte(term[len(term)-1]) || end == len(lower) || !isWordByte(lower[end])
		if leftOK && rightOK {
			return start
		}
		offset = start + 1
	}
}

func containsTerm(lower, term string) bool {
	return indexTerm(lower, term) >= 0
}

func containsAnyTerm(lower string, terms []string) bool {
	for _, t := range terms {
		if containsTerm(lower, t) {
			return true
		}
	}
	return false
}

var punctuation = regexp.MustCompile(`[\s,.!?;:"'“”‘’、，。！？；：()（）\[\]]+`)

// stripTerms removes every listed term from text and collapses what is left.
// The result keeps the original casing.
func stripTerms(text string, terms []string) string {
	out := text
	if len(strings.ToLower(out)) != len(out) {
		out = strings.ToLower(out)
	}
	for _, term := range terms {
		for {
			i := indexTerm(strings.ToLower(out), term)
			if i < 0 {
				break
			}
			out = out[:i] + " " + out[i+len(term):]
		}
	}
	out = punctuation.ReplaceAllString(out, " ")
	return strings.Join(strings.Fields(out), " ")
}

// quoteLiteral renders an ANSI SQL string literal. Backslashes are left as is;
// the validator rejects any literal holding one.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// safeSubject limits free-text subjects that end up inside a literal.
var safeSubject = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ·.\-]{0,31}$`)

// safeValue limits new field values in update statements.
var safeValue = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ·.\-()]{0,63}$`)

var phoneValue = regexp.MustCompile(`^\+?[0-9][0-9\-]{4,19}$`)

var gradeValue = regexp.MustCompile(`^(19|20)[0-9]{2}$`)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
