package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/hq040506/DL-student-assistant/pkg/nlq"
)

// ErrConversationNotFound is returned by Load for an unknown or expired conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationState is what the assistant needs from one turn to the next.
type ConversationState struct {
	Window    []nlq.Turn         `json:"window"`
	Pending   *nlq.PendingRecord `json:"pending,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Append adds a turn and keeps at most limit turns.
func (s *ConversationState) Append(limit int, turns ...nlq.Turn) {
	s.Window = append(s.Window, turns...)
	if limit > 0 && len(s.Window) > limit {
		s.Window = append([]nlq.Turn(nil), s.Window[len(s.Window)-limit:]...)
	}
}

// ConversationStore keeps the rolling window and pending interaction per conversation.
type ConversationStore interface {
	Load(ctx context.Context, conversationID string) (*ConversationState, error)
	Save(ctx context.Context, conversationID string, state *ConversationState) error
	Delete(ctx context.Context, conversationID string) error
}
