package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
)

type Message struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	ChatID  primitive.ObjectID `bson:"chat_id" json:"chat_id"`
	Type    string             `bson:"type" json:"type"` // 'user' or 'assistant'
	Content string             `bson:"content" json:"content"`
	Queries *[]Query           `bson:"queries,omitempty" json:"queries,omitempty"`
	// PendingKind is set when the assistant asked a question and waits for the next message.
	PendingKind *string `bson:"pending_kind,omitempty" json:"pending_kind,omitempty"`
	Base        `bson:",inline"`
}

// Query is a statement the assistant planned for a message, with its outcome.
type Query struct {
	ID              primitive.ObjectID `bson:"id" json:"id"`
	Query           string             `bson:"query" json:"query"`
	QueryType       string             `bson:"query_type" json:"query_type"` // select, count, update, delete, insert
	Description     string             `bson:"description" json:"description"`
	ExecutionTime   *int               `bson:"execution_time" json:"execution_time"` // in milliseconds
	IsCritical      bool               `bson:"is_critical" json:"is_critical"`
	IsExecuted      bool               `bson:"is_executed" json:"is_executed"`
	RowsAffected    *int64             `bson:"rows_affected,omitempty" json:"rows_affected,omitempty"`
	Error           *QueryError        `bson:"error,omitempty" json:"error,omitempty"`
	ExecutionResult *string            `bson:"execution_result,omitempty" json:"execution_result,omitempty"` // JSON string
	Chart           *ChartSuggestion   `bson:"chart,omitempty" json:"chart,omitempty"`
}

type QueryError struct {
	Code    string `bson:"code" json:"code"`
	Message string `bson:"message" json:"message"`
	Details string `bson:"details" json:"details"`
}

// ChartSuggestion names a chart type and the result columns that feed it.
type ChartSuggestion struct {
	Type  string `bson:"type" json:"type"`
	X     string `bson:"x,omitempty" json:"x,omitempty"`
	Y     string `bson:"y,omitempty" json:"y,omitempty"`
	Group string `bson:"group,omitempty" json:"group,omitempty"`
	Title string `bson:"title,omitempty" json:"title,omitempty"`
}

func NewMessage(userID, chatID primitive.ObjectID, msgType, content string, queries *[]Query) *Message {
	return &Message{
		UserID:  userID,
		ChatID:  chatID,
		Type:    msgType,
		Content: content,
		Queries: queries,
		Base:    NewBase(),
	}
}
