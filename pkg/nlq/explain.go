package nlq

import "fmt"

const maxExplainedRunes = 40

// Explain renders the one-line preamble shown above an executed statement's result.
func Explain(text string, kind ResponseKind) string {
	n := normalize(text)
	return explain(n, kind, isChinese(n))
}

func explain(subject string, kind ResponseKind, zh bool) string {
	key := msgResultsFor
	switch {
	case kind == KindCount:
		key = msgStatisticsFor
	case kind.Mutating():
		key = msgExecutedFor
	}
	return fmt.Sprintf(phrase(key, zh), truncate(subject, maxExplainedRunes))
}
