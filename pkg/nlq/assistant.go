package nlq

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hq040506/DL-student-assistant/pkg/llm"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
	"github.com/hq040506/DL-student-assistant/pkg/sqlguard"
)

const tracerName = "github.com/hq040506/DL-student-assistant/pkg/nlq"

const (
	DefaultLLMTimeout    = 8 * time.Second
	DefaultHistoryWindow = 6
	DefaultRateBurst     = 5
)

// Config tunes the assisted planner.
type Config struct {
	LLMTimeout    time.Duration
	HistoryWindow int
	// RateLimit is the completion calls allowed per second; zero means unlimited.
	RateLimit float64
	RateBurst int
}

func (c Config) withDefaults() Config {
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = DefaultLLMTimeout
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
	return c
}

// Assistant turns one user utterance into a Plan. It keeps no per-conversation
// state and is safe for concurrent use.
type Assistant struct {
	registry  *schema.Registry
	rules     *RulePlanner
	llm       *LLMPlanner
	validator *sqlguard.Validator
}

// NewAssistant wires the pipeline. A nil client disables the assisted path and every
// turn is planned by the rules.
func NewAssistant(registry *schema.Registry, entities EntityReader, client llm.Client, cfg Config) *Assistant {
	rules := NewRulePlanner(entities)
	a := &Assistant{
		registry:  registry,
		rules:     rules,
		validator: sqlguard.NewValidator(registry.Allowlist()),
	}
	if client != nil {
		a.llm = NewLLMPlanner(client, registry, rules, cfg)
	}
	return a
}

// Rules exposes the deterministic planner.
func (a *Assistant) Rules() *RulePlanner { return a.rules }

// Handle plans one turn. When pending is set the text answers it. Handle never
// panics and never returns nil; any SQLPlan it returns has passed the validator,
// and a mutating SQLPlan is only returned confirmed.
func (a *Assistant) Handle(ctx context.Context, text string, history []Turn, pending Pending) (plan Plan) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "nlq.Assistant.Handle",
		trace.WithAttributes(attribute.Bool("pending", pending != nil)))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Assistant -> Handle -> recovered from panic: %v\n%s", r, debug.Stack())
			turnsTotal.WithLabelValues(pathRecovered).Inc()
			plan = &ChatPlan{Message: phrase(msgHelp, isChinese(text))}
		}
		if plan == nil {
			plan = &ChatPlan{Message: phrase(msgHelp, isChinese(text))}
		}
		span.SetAttributes(attribute.String("plan", planName(plan)))
		span.End()
		turnLatencySeconds.Observe(time.Since(start).Seconds())
	}()

	text = normalize(text)
	if pending != nil {
		turnsTotal.WithLabelValues(pathPending).Inc()
		return a.resolvePending(ctx, text, history, pending)
	}
	return a.plan(ctx, text, history)
}

// plan is the pipeline for a turn with no pending state.
func (a *Assistant) plan(ctx context.Context, text string, history []Turn) Plan {
	if strings.TrimSpace(text) == "" {
		return &ChatPlan{Message: phrase(msgHelp, false)}
	}

	dicts, err := a.registry.Dictionaries(ctx)
	if err != nil {
		log.Printf("Assistant -> plan -> dictionaries unavailable, matching without them: %v", err)
		dicts = &schema.Dictionaries{}
	}
	t := newTurn(text, dicts)

	if reply := prefilter(t); reply != nil {
		turnsTotal.WithLabelValues(pathPrefilter).Inc()
		return reply
	}

	if a.llm != nil {
		plan, err := a.llm.Plan(ctx, t, history)
		if err == nil {
			turnsTotal.WithLabelValues(pathLLM).Inc()
			return a.finish(t, plan)
		}
		reason := recordLLMFailure(err)
		log.Printf("Assistant -> plan -> assisted planner failed (%s), using rules: %v", reason, err)
	}

	turnsTotal.WithLabelValues(pathRules).Inc()
	return a.finish(t, a.rules.planTurn(ctx, t))
}

// finish validates statements, puts mutations behind a confirmation and attaches
// the preamble.
func (a *Assistant) finish(t *turn, plan Plan) Plan {
	switch p := plan.(type) {
	case *SQLPlan:
		if err := a.validator.Validate(p.Statement); err != nil {
			validatorRejectionsTotal.Inc()
			log.Printf("Assistant -> finish -> statement rejected: %v", err)
			return &ChatPlan{Message: t.say(msgRejected)}
		}
		if p.Kind.Mutating() {
			if (p.Kind == KindUpdate || p.Kind == KindDelete) && !hasWhere(p.Statement) {
				log.Printf("Assistant -> finish -> unfiltered %s rejected", p.Kind)
				return &ChatPlan{Message: t.say(msgRejected)}
			}
			return &AskPlan{
				Message: confirmationMessage(p.Statement, t.zh),
				Pending: AwaitingDestructiveConfirmation{Statement: p.Statement, Kind: p.Kind},
			}
		}
		return &SQLPlan{Statement: p.Statement, Kind: p.Kind, Preamble: explain(t.text, p.Kind, t.zh)}
	case *AskPlan:
		if _, ok := p.Pending.(AwaitingDestructiveConfirmation); ok || p.Pending == nil {
			return &ChatPlan{Message: p.Message}
		}
		return p
	case *ChatPlan:
		return p
	}
	return &ChatPlan{Message: t.say(msgHelp)}
}

func hasWhere(stmt string) bool {
	for _, tok := range sqlguard.Tokens(stmt) {
		if strings.EqualFold(tok, "where") {
			return true
		}
	}
	return false
}

func planName(p Plan) string {
	switch v := p.(type) {
	case *ChatPlan:
		return "chat"
	case *AskPlan:
		if v.Pending == nil {
			return "ask"
		}
		return "ask:" + string(v.Pending.PendingKind())
	case *SQLPlan:
		return "sql:" + string(v.Kind)
	}
	return "unknown"
}
