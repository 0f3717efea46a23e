package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hq040506/DL-student-assistant/pkg/redis"
)

type redisConversationStore struct {
	redisRepo redis.IRedisRepositories
	ttl       time.Duration
}

// NewRedisConversationStore stores each conversation as one JSON value that expires after ttl of inactivity.
func NewRedisConversationStore(redisRepo redis.IRedisRepositories, ttl time.Duration) ConversationStore {
	return &redisConversationStore{redisRepo: redisRepo, ttl: ttl}
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

func (s *redisConversationStore) Load(ctx context.Context, conversationID string) (*ConversationState, error) {
	data, err := s.redisRepo.Get(conversationKey(conversationID), ctx)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var state ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return &state, nil
}

func (s *redisConversationStore) Save(ctx context.Context, conversationID string, state *ConversationState) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	return s.redisRepo.Set(conversationKey(conversationID), data, s.ttl, ctx)
}

func (s *redisConversationStore) Delete(ctx context.Context, conversationID string) error {
	return s.redisRepo.Del(conversationKey(conversationID), ctx)
}
