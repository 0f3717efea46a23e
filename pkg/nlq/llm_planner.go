package nlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/hq040506/DL-student-assistant/pkg/llm"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
	"github.com/hq040506/DL-student-assistant/pkg/sqlguard"
)

var (
	ErrRateLimited = errors.New("completion rate limit exceeded")
	ErrBadReply    = errors.New("malformed completion reply")
)

// StatusError is returned when the completion service answered without usable text.
type StatusError struct {
	Status llm.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion status %s", e.Status)
}

// maxPromptValues bounds each dictionary listed in the prompt.
const maxPromptValues = 40

// planReply is the structured object the completion service must return.
type planReply struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Pending       string `json:"pending"`
	SQL           string `json:"sql"`
	ResponseKind  string `json:"response_kind"`
	Subject       string `json:"subject"`
	ExpectedValue string `json:"expected_value"`
}

// LLMPlanner asks a completion service for a plan. Any error it returns means the
// caller should fall back to the rule planner.
type LLMPlanner struct {
	client   llm.Client
	registry *schema.Registry
	rules    *RulePlanner
	limiter  *rate.Limiter
	timeout  time.Duration
	window   int
}

func NewLLMPlanner(client llm.Client, registry *schema.Registry, rules *RulePlanner, cfg Config) *LLMPlanner {
	cfg = cfg.withDefaults()
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &LLMPlanner{
		client:   client,
		registry: registry,
		rules:    rules,
		limiter:  rate.NewLimiter(limit, cfg.RateBurst),
		timeout:  cfg.LLMTimeout,
		window:   cfg.HistoryWindow,
	}
}

// Plan runs one completion and converts the reply. The returned plan has not been
// validated yet.
func (p *LLMPlanner) Plan(ctx context.Context, t *turn, history []Turn) (Plan, error) {
	if !p.limiter.Allow() {
		return nil, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	callCtx, span := otel.Tracer(tracerName).Start(ctx, "nlq.LLMPlanner.Complete",
		trace.WithAttributes(attribute.String("llm.model", p.client.GetModelInfo().Name)))
	completion, err := p.client.Complete(callCtx, p.buildPrompt(t, history))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		span.End()
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	span.SetAttributes(attribute.String("llm.status", string(completion.Status)))
	span.End()
	if completion.Status != llm.StatusOK {
		return nil, &StatusError{Status: completion.Status}
	}

	reply, err := parseReply(completion.Text)
	if err != nil {
		return nil, err
	}
	return p.toPlan(ctx, t, reply)
}

func (p *LLMPlanner) buildPrompt(t *turn, history []Turn) llm.Prompt {
	var messages []llm.Message
	if len(history) > p.window {
		history = history[len(history)-p.window:]
	}
	for _, h := range history {
		if h.Content == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}

	var b strings.Builder
	b.WriteString("Schema:\n")
	if p.registry != nil {
		b.WriteString(p.registry.Describe())
	}
	b.WriteString("\nKnown values:\n")
	for _, d := range []struct {
		label  string
		values []string
	}{
		{"name", t.dicts.Names},
		{"college", t.dicts.Colleges},
		{"major", t.dicts.Majors},
		{"class_name", t.dicts.Classes},
		{"grade", t.dicts.Grades},
		{"gender", t.dicts.Genders},
	} {
		values := d.values
		if len(values) > maxPromptValues {
			values = values[:maxPromptValues]
		}
		fmt.Fprintf(&b, "- %s: %s\n", d.label, strings.Join(values, ", "))
	}
	b.WriteString("\nUser request:\n")
	b.WriteString(t.text)

	messages = append(messages, llm.Message{Role: RoleUser, Content: b.String()})
	return llm.Prompt{Messages: messages}
}

// parseReply accepts the bare object or one wrapped in prose or code fences.
func parseReply(text string) (*planReply, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no object found", ErrBadReply)
	}

	var reply planReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	reply.Type = strings.ToLower(strings.TrimSpace(reply.Type))
	return &reply, nil
}

func (p *LLMPlanner) toPlan(ctx context.Context, t *turn, reply *planReply) (Plan, error) {
	switch reply.Type {
	case "chat":
		if strings.TrimSpace(reply.Message) == "" {
			return nil, fmt.Errorf("%w: chat without message", ErrBadReply)
		}
		return &ChatPlan{Message: reply.Message}, nil

	case "ask":
		if strings.TrimSpace(reply.Message) == "" {
			return nil, fmt.Errorf("%w: ask without message", ErrBadReply)
		}
		switch PendingKind(reply.Pending) {
		case PendingCountDimension:
			return &AskPlan{Message: reply.Message, Pending: AwaitingCountDimension{}}, nil
		case PendingSelectSubject:
			return &AskPlan{Message: reply.Message, Pending: AwaitingSelectSubject{}}, nil
		}
		return nil, fmt.Errorf("%w: unknown pending %q", ErrBadReply, reply.Pending)

	case "sql":
		stmt := strings.TrimSpace(reply.SQL)
		if stmt == "" {
			return nil, fmt.Errorf("%w: sql without statement", ErrBadReply)
		}
		return &SQLPlan{Statement: stmt, Kind: kindOf(stmt, ResponseKind(strings.ToLower(reply.ResponseKind)))}, nil

	case "boolean_check":
		if strings.TrimSpace(reply.Subject) == "" {
			return nil, fmt.Errorf("%w: boolean_check without subject", ErrBadReply)
		}
		return p.rules.CheckClaim(ctx, t.text, reply.Subject, reply.ExpectedValue), nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrBadReply, reply.Type)
}

// kindOf trusts the statement's leading verb over the declared kind, so a mislabelled
// mutation still goes through confirmation.
func kindOf(stmt string, declared ResponseKind) ResponseKind {
	switch verb := ResponseKind(sqlguard.LeadingVerb(stmt)); verb {
	case KindUpdate, KindDelete, KindInsert:
		return verb
	}
	if declared == KindCount || declared == KindSelect {
		return declared
	}
	if strings.Contains(strings.ToLower(stmt), "count(") {
		return KindCount
	}
	return KindSelect
}
