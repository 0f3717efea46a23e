package nlq

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// resolvePending consumes the pending state with the user's reply. Clarifications
// are rewritten into a complete request and run through the pipeline with no
// pending state, so an unresolved rewrite simply asks again.
func (a *Assistant) resolvePending(ctx context.Context, text string, history []Turn, pending Pending) Plan {
	zh := isChinese(text) || lastAssistantChinese(history)

	switch p := pending.(type) {
	case AwaitingCountDimension:
		return a.plan(ctx, countRequest(text, zh), history)
	case AwaitingSelectSubject:
		return a.plan(ctx, selectRequest(text, zh), history)
	case AwaitingDestructiveConfirmation:
		return a.confirm(p, text, zh)
	}
	log.Printf("Assistant -> resolvePending -> unknown pending %T, ignoring", pending)
	return a.plan(ctx, text, history)
}

func countRequest(text string, zh bool) string {
	if zh {
		return "统计" + text
	}
	return "count " + text
}

func selectRequest(text string, zh bool) string {
	if zh {
		return "查询" + text + "信息"
	}
	return "query " + text + " info"
}

// confirm fails closed: only an exact affirmative releases the statement.
func (a *Assistant) confirm(p AwaitingDestructiveConfirmation, text string, zh bool) Plan {
	switch classifyReply(text) {
	case replyAffirmative:
		if err := a.validator.Validate(p.Statement); err != nil {
			validatorRejectionsTotal.Inc()
			log.Printf("Assistant -> confirm -> stored statement rejected: %v", err)
			return &ChatPlan{Message: phrase(msgRejected, zh)}
		}
		return &SQLPlan{
			Statement: p.Statement,
			Kind:      p.Kind,
			Preamble:  explain(p.Statement, p.Kind, zh),
			confirmed: true,
		}
	case replyNegative:
		return &ChatPlan{Message: phrase(msgCancelled, zh)}
	}
	return &ChatPlan{Message: phrase(msgCancelledUnclear, zh)}
}

type replyClass int

const (
	replyUnclear replyClass = iota
	replyAffirmative
	replyNegative
)

func classifyReply(text string) replyClass {
	reply := strings.ToLower(normalize(text))
	reply = strings.TrimRight(reply, "。.!！~ ")
	reply = strings.Join(strings.Fields(reply), " ")
	if _, ok := affirmativeReplies[reply]; ok {
		return replyAffirmative
	}
	if _, ok := negativeReplies[reply]; ok {
		return replyNegative
	}
	return replyUnclear
}

func lastAssistantChinese(history []Turn) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleAssistant {
			return isChinese(history[i].Content)
		}
	}
	return false
}

func confirmationMessage(stmt string, zh bool) string {
	return fmt.Sprintf(phrase(msgConfirm, zh), stmt)
}
