package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/constants"
	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/internal/repositories"
)

const maxTitleRunes = 20

// ConversationRunner runs turns of a conversation.
type ConversationRunner interface {
	Run(ctx context.Context, conversationID, text string) (*TurnResult, error)
	Reset(ctx context.Context, conversationID string) error
}

type ChatService interface {
	Create(ctx context.Context, userID string, req *dtos.CreateChatRequest) (*dtos.ChatResponse, uint32, error)
	Update(ctx context.Context, userID, chatID string, req *dtos.UpdateChatRequest) (*dtos.ChatResponse, uint32, error)
	Delete(ctx context.Context, userID, chatID string) (uint32, error)
	GetByID(ctx context.Context, userID, chatID string) (*dtos.ChatResponse, uint32, error)
	List(ctx context.Context, userID string, page, pageSize int) (*dtos.ChatListResponse, uint32, error)
	SendMessage(ctx context.Context, userID, chatID string, req *dtos.CreateMessageRequest) (*dtos.SendMessageResponse, uint32, error)
	DeleteMessages(ctx context.Context, userID, chatID string) (uint32, error)
	ListMessages(ctx context.Context, userID, chatID string, page, pageSize int) (*dtos.MessageListResponse, uint32, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	runner   ConversationRunner
}

func NewChatService(chatRepo repositories.ChatRepository, runner ConversationRunner) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		runner:   runner,
	}
}

func (s *chatService) Create(ctx context.Context, userID string, req *dtos.CreateChatRequest) (*dtos.ChatResponse, uint32, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid user ID format")
	}

	chat := models.NewChat(userObjID, strings.TrimSpace(req.Title))
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to create chat: %v", err)
	}
	log.Printf("ChatService -> Create -> chat %s created for user %s", chat.ID.Hex(), userID)
	return buildChatResponse(chat), http.StatusCreated, nil
}

func (s *chatService) Update(ctx context.Context, userID, chatID string, req *dtos.UpdateChatRequest) (*dtos.ChatResponse, uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, status, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("title is required")
	}
	if err := s.chatRepo.UpdateTitle(ctx, chat.ID, title); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, http.StatusNotFound, fmt.Errorf("chat not found")
		}
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to update chat: %v", err)
	}
	chat.Title = title
	chat.UpdatedAt = time.Now()
	return buildChatResponse(chat), http.StatusOK, nil
}

func (s *chatService) Delete(ctx context.Context, userID, chatID string) (uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return status, err
	}

	if err := s.chatRepo.Delete(ctx, chat.ID); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to delete chat: %v", err)
	}
	if err := s.chatRepo.DeleteMessages(ctx, chat.ID); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to delete chat messages: %v", err)
	}
	if err := s.runner.Reset(ctx, chat.ID.Hex()); err != nil {
		log.Printf("ChatService -> Delete -> failed to drop conversation state: %v", err)
	}
	return http.StatusOK, nil
}

func (s *chatService) GetByID(ctx context.Context, userID, chatID string) (*dtos.ChatResponse, uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, status, err
	}
	return buildChatResponse(chat), http.StatusOK, nil
}

func (s *chatService) List(ctx context.Context, userID string, page, pageSize int) (*dtos.ChatListResponse, uint32, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid user ID format")
	}
	page, pageSize = normalizePage(page, pageSize)

	chats, total, err := s.chatRepo.FindByUserID(ctx, userObjID, page, pageSize)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch chats: %v", err)
	}

	response := &dtos.ChatListResponse{
		Chats: make([]dtos.ChatResponse, len(chats)),
		Total: total,
	}
	for i, chat := range chats {
		response.Chats[i] = *buildChatResponse(chat)
	}
	return response, http.StatusOK, nil
}

// SendMessage stores the user's message, runs it as the chat's next turn and
// stores the assistant's reply.
func (s *chatService) SendMessage(ctx context.Context, userID, chatID string, req *dtos.CreateMessageRequest) (*dtos.SendMessageResponse, uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, status, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("message content is required")
	}

	userMsg := models.NewMessage(chat.UserID, chat.ID, models.MessageTypeUser, content, nil)
	if err := s.chatRepo.CreateMessage(ctx, userMsg); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to save message: %v", err)
	}

	result, err := s.runner.Run(ctx, chat.ID.Hex(), content)
	if err != nil {
		log.Printf("ChatService -> SendMessage -> turn failed: %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to process message")
	}

	assistantMsg := models.NewMessage(chat.UserID, chat.ID, models.MessageTypeAssistant, result.Message, queriesFor(result))
	assistantMsg.PendingKind = result.PendingKind
	if err := s.chatRepo.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to save reply: %v", err)
	}

	if chat.Title == models.DefaultChatTitle {
		if err := s.chatRepo.UpdateTitle(ctx, chat.ID, titleFrom(content)); err != nil {
			log.Printf("ChatService -> SendMessage -> failed to title chat: %v", err)
		}
	} else if err := s.chatRepo.Touch(ctx, chat.ID); err != nil {
		log.Printf("ChatService -> SendMessage -> failed to touch chat: %v", err)
	}

	return &dtos.SendMessageResponse{
		UserMessage:      dtos.ToMessageResponse(userMsg),
		AssistantMessage: dtos.ToMessageResponse(assistantMsg),
		Kind:             result.Kind,
	}, http.StatusOK, nil
}

func (s *chatService) DeleteMessages(ctx context.Context, userID, chatID string) (uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return status, err
	}

	if err := s.chatRepo.DeleteMessages(ctx, chat.ID); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to delete messages: %v", err)
	}
	if err := s.runner.Reset(ctx, chat.ID.Hex()); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to reset conversation: %v", err)
	}
	return http.StatusOK, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, chatID string, page, pageSize int) (*dtos.MessageListResponse, uint32, error) {
	chat, status, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, status, err
	}
	page, pageSize = normalizePage(page, pageSize)

	messages, total, err := s.chatRepo.FindMessagesByChat(ctx, chat.ID, page, pageSize)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch messages: %v", err)
	}

	response := &dtos.MessageListResponse{
		Messages: make([]dtos.MessageResponse, len(messages)),
		Total:    total,
	}
	for i, msg := range messages {
		response.Messages[i] = dtos.ToMessageResponse(msg)
	}
	return response, http.StatusOK, nil
}

// ownedChat loads a chat and checks it belongs to userID.
func (s *chatService) ownedChat(ctx context.Context, userID, chatID string) (*models.Chat, uint32, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid user ID format")
	}
	chatObjID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid chat ID format")
	}

	chat, err := s.chatRepo.FindByID(ctx, chatObjID)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch chat: %v", err)
	}
	if chat == nil {
		return nil, http.StatusNotFound, fmt.Errorf("chat not found")
	}
	if chat.UserID != userObjID {
		return nil, http.StatusForbidden, fmt.Errorf("unauthorized access to chat")
	}
	return chat, http.StatusOK, nil
}

func buildChatResponse(chat *models.Chat) *dtos.ChatResponse {
	return &dtos.ChatResponse{
		ID:        chat.ID.Hex(),
		UserID:    chat.UserID.Hex(),
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt.Format(time.RFC3339),
		UpdatedAt: chat.UpdatedAt.Format(time.RFC3339),
	}
}

// queriesFor records the statement a turn ran, nil when it ran none.
func queriesFor(result *TurnResult) *[]models.Query {
	if !result.IsStatement() {
		return nil
	}

	query := models.Query{
		ID:            primitive.NewObjectID(),
		Query:         result.Statement,
		QueryType:     result.Kind,
		Description:   firstLine(result.Message),
		ExecutionTime: result.ExecutionTime,
		IsCritical:    result.Kind != "select" && result.Kind != "count",
		IsExecuted:    result.Error == nil && result.ExecutionTime != nil,
		RowsAffected:  result.RowsAffected,
		Chart:         result.Chart,
	}
	if result.Error != nil {
		query.Error = &models.QueryError{
			Code:    result.Error.Code,
			Message: result.Error.Message,
			Details: result.Error.Details,
		}
	}
	if result.Columns != nil {
		rows := result.Rows
		if len(rows) > constants.MaxResultRows {
			rows = rows[:constants.MaxResultRows]
		}
		encoded, err := json.Marshal(map[string]interface{}{
			"columns": result.Columns,
			"results": rows,
			"total":   len(result.Rows),
		})
		if err != nil {
			log.Printf("ChatService -> queriesFor -> failed to encode result: %v", err)
		} else {
			s := string(encoded)
			query.ExecutionResult = &s
		}
	}
	return &[]models.Query{query}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func titleFrom(content string) string {
	runes := []rune(strings.Join(strings.Fields(content), " "))
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "…"
	}
	return string(runes)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}
