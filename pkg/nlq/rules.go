package nlq

import (
	"context"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// EntityReader reads student rows by name.
type EntityReader interface {
	GetByKey(ctx context.Context, name string) ([]map[string]interface{}, error)
}

// turn is the per-utterance view shared by rule predicates and planners.
type turn struct {
	text  string // normalised input
	lower string
	zh    bool
	slots SlotSet
	dicts *schema.Dictionaries
}

func newTurn(text string, dicts *schema.Dictionaries) *turn {
	if dicts == nil {
		dicts = &schema.Dictionaries{}
	}
	n := normalize(text)
	return &turn{
		text:  n,
		lower: strings.ToLower(n),
		zh:    isChinese(n),
		slots: ExtractSlots(n, dicts),
		dicts: dicts,
	}
}

func (t *turn) has(terms []string) bool { return containsAnyTerm(t.lower, terms) }

func (t *turn) say(key msgKey) string { return phrase(key, t.zh) }

type rule struct {
	intent Intent
	match  func(t *turn) bool
	plan   func(ctx context.Context, t *turn) Plan
}

// RulePlanner is the deterministic planner. Rules are tried in order and the first
// matching predicate decides the intent.
type RulePlanner struct {
	entities EntityReader
	rules    []rule
}

func NewRulePlanner(entities EntityReader) *RulePlanner {
	p := &RulePlanner{entities: entities}
	p.rules = []rule{
		{IntentBooleanCheck, func(t *turn) bool { return parseBooleanCheck(t) != nil }, p.planBooleanCheck},
		{IntentDelete, func(t *turn) bool { return t.has(deleteTriggers) }, p.planDelete},
		{IntentUpdate, func(t *turn) bool { return t.has(updateTriggers) }, p.planUpdate},
		{IntentInsert, func(t *turn) bool { return t.has(insertTriggers) }, p.planInsert},
		{IntentSelect, isSelectRequest, p.planSelect},
		{IntentCount, func(t *turn) bool { return t.has(countTriggers) }, p.planCount},
	}
	return p
}

func isSelectRequest(t *turn) bool {
	if t.has(selectTriggers) {
		return true
	}
	_, named := t.slots.Get(SlotName)
	return named && !t.has(countTriggers)
}

// Priority lists the intents in the order their rules are tried.
func (p *RulePlanner) Priority() []Intent {
	out := make([]Intent, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.intent
	}
	return out
}

// Classify returns the intent of text, IntentChat when no rule matches.
func (p *RulePlanner) Classify(text string, dicts *schema.Dictionaries) Intent {
	t := newTurn(text, dicts)
	for _, r := range p.rules {
		if r.match(t) {
			return r.intent
		}
	}
	return IntentChat
}

// Plan runs the first matching rule. Mutating statements come back unwrapped;
// the Assistant puts them behind a confirmation.
func (p *RulePlanner) Plan(ctx context.Context, text string, dicts *schema.Dictionaries) Plan {
	return p.planTurn(ctx, newTurn(text, dicts))
}

func (p *RulePlanner) planTurn(ctx context.Context, t *turn) Plan {
	for _, r := range p.rules {
		if r.match(t) {
			return r.plan(ctx, t)
		}
	}
	return &ChatPlan{Message: t.say(msgHelp)}
}

func (p *RulePlanner) planInsert(_ context.Context, t *turn) Plan {
	return &ChatPlan{Message: t.say(msgInsertUnsupported)}
}
