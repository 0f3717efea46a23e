package dtos

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hq040506/DL-student-assistant/internal/models"
)

type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type MessageResponse struct {
	ID          string   `json:"id"`
	ChatID      string   `json:"chat_id"`
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Queries     *[]Query `json:"queries,omitempty"`
	PendingKind *string  `json:"pending_kind,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

type Query struct {
	ID              string                  `json:"id"`
	Query           string                  `json:"query"`
	QueryType       string                  `json:"query_type"`
	Description     string                  `json:"description"`
	ExecutionTime   *int                    `json:"execution_time,omitempty"`
	IsCritical      bool                    `json:"is_critical"`
	IsExecuted      bool                    `json:"is_executed"`
	RowsAffected    *int64                  `json:"rows_affected,omitempty"`
	Error           *QueryError             `json:"error,omitempty"`
	ExecutionResult map[string]interface{}  `json:"execution_result,omitempty"`
	Chart           *models.ChartSuggestion `json:"chart,omitempty"`
}

type QueryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}

// SendMessageResponse is the outcome of one conversation turn.
type SendMessageResponse struct {
	UserMessage      MessageResponse `json:"user_message"`
	AssistantMessage MessageResponse `json:"assistant_message"`
	// Kind is chat, ask, or the response kind of the executed statement.
	Kind string `json:"kind"`
}

func ToMessageResponse(msg *models.Message) MessageResponse {
	return MessageResponse{
		ID:          msg.ID.Hex(),
		ChatID:      msg.ChatID.Hex(),
		Type:        msg.Type,
		Content:     msg.Content,
		Queries:     ToQueryDto(msg.Queries),
		PendingKind: msg.PendingKind,
		CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
	}
}

func ToQueryDto(queries *[]models.Query) *[]Query {
	if queries == nil {
		return nil
	}
	queriesDto := make([]Query, len(*queries))
	for i, query := range *queries {
		var executionResult map[string]interface{}
		if query.ExecutionResult != nil {
			if err := json.Unmarshal([]byte(*query.ExecutionResult), &executionResult); err != nil {
				log.Printf("ToQueryDto -> error unmarshalling executionResult: %v", err)
				executionResult = map[string]interface{}{}
			}
		}

		queriesDto[i] = Query{
			ID:              query.ID.Hex(),
			Query:           query.Query,
			QueryType:       query.QueryType,
			Description:     query.Description,
			ExecutionTime:   query.ExecutionTime,
			IsCritical:      query.IsCritical,
			IsExecuted:      query.IsExecuted,
			RowsAffected:    query.RowsAffected,
			Error:           (*QueryError)(query.Error),
			ExecutionResult: executionResult,
			Chart:           query.Chart,
		}
	}
	return &queriesDto
}
