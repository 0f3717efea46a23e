package nlq

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Planner paths recorded on every turn.
const (
	pathPending   = "pending"
	pathPrefilter = "prefilter"
	pathLLM       = "llm"
	pathRules     = "rules"
	pathRecovered = "recovered"
)

var (
	// turnsTotal counts handled turns by the path that produced the plan.
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "nlq",
		Name:      "turns_total",
		Help:      "Handled turns by planner path",
	}, []string{"path"})

	// llmFailuresTotal counts soft failures of the completion service.
	// Labels: reason (rate_limited, timeout, transport, status, parse)
	llmFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "nlq",
		Name:      "llm_failures_total",
		Help:      "Completion service failures that fell back to the rule planner",
	}, []string{"reason"})

	validatorRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "nlq",
		Name:      "validator_rejections_total",
		Help:      "Statements discarded by the allowlist validator",
	})

	turnLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Subsystem: "nlq",
		Name:      "turn_latency_seconds",
		Help:      "Time spent planning one turn",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})
)

func recordLLMFailure(err error) string {
	var statusErr *StatusError
	reason := "transport"
	switch {
	case errors.Is(err, ErrRateLimited):
		reason = "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, ErrBadReply):
		reason = "parse"
	case errors.As(err, &statusErr):
		reason = "status"
	}
	llmFailuresTotal.WithLabelValues(reason).Inc()
	return reason
}
