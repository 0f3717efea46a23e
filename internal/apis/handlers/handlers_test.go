package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/apis/handlers"
	"github.com/hq040506/DL-student-assistant/internal/apis/middlewares"
	"github.com/hq040506/DL-student-assistant/internal/services"
	"github.com/hq040506/DL-student-assistant/internal/utils"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
)

type stubChatService struct {
	services.ChatService
	lastUser    string
	lastContent string
	sendErr     error
}

func (s *stubChatService) SendMessage(_ context.Context, userID, chatID string, req *dtos.CreateMessageRequest) (*dtos.SendMessageResponse, uint32, error) {
	s.lastUser = userID
	s.lastContent = req.Content
	if s.sendErr != nil {
		return nil, http.StatusForbidden, s.sendErr
	}
	return &dtos.SendMessageResponse{
		Kind:             "count",
		AssistantMessage: dtos.MessageResponse{ChatID: chatID, Type: "assistant", Content: "📊 统计结果"},
	}, http.StatusOK, nil
}

func (s *stubChatService) Create(_ context.Context, userID string, req *dtos.CreateChatRequest) (*dtos.ChatResponse, uint32, error) {
	s.lastUser = userID
	return &dtos.ChatResponse{ID: "c1", UserID: userID, Title: req.Title}, http.StatusCreated, nil
}

type stubStudentService struct {
	lastReq *dtos.StudentListRequest
}

func (s *stubStudentService) List(_ context.Context, req *dtos.StudentListRequest) (*dtos.StudentListResponse, uint32, error) {
	s.lastReq = req
	return &dtos.StudentListResponse{Students: []dbmanager.Student{{Name: "张三"}}, Total: 1}, http.StatusOK, nil
}

func (s *stubStudentService) GetByName(_ context.Context, name string) (*dtos.StudentDetailResponse, uint32, error) {
	if name != "张三" {
		return nil, http.StatusNotFound, errors.New("student not found")
	}
	return &dtos.StudentDetailResponse{Name: name}, http.StatusOK, nil
}

type stubVisualizationService struct{}

func (stubVisualizationService) Overview(context.Context) (*dtos.OverviewResponse, uint32, error) {
	return &dtos.OverviewResponse{Total: 4}, http.StatusOK, nil
}

func newTestRouter(t *testing.T, chat services.ChatService, students services.StudentService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := utils.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.GenerateToken("u1")
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middlewares.NewAuthMiddleware(jwtService))

	chatHandler := handlers.NewChatHandler(chat)
	api.POST("/chats", chatHandler.Create)
	api.POST("/chats/:id/messages", chatHandler.CreateMessage)

	studentHandler := handlers.NewStudentHandler(students)
	api.GET("/students", studentHandler.List)
	api.GET("/students/:name", studentHandler.GetByName)

	api.GET("/visualizations/overview", handlers.NewVisualizationHandler(stubVisualizationService{}).GetOverview)
	return router, token
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dtos.Response {
	t.Helper()
	var resp dtos.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	router, token := newTestRouter(t, &stubChatService{}, &stubStudentService{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/visualizations/overview", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestChatHandler_CreateMessage(t *testing.T) {
	chat := &stubChatService{}
	router, token := newTestRouter(t, chat, &stubStudentService{})

	w := do(router, http.MethodPost, "/api/chats/c1/messages", token, `{"content":"统计各学院人数"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "u1", chat.lastUser)
	assert.Equal(t, "统计各学院人数", chat.lastContent)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "count", data["kind"])
}

func TestChatHandler_CreateMessageValidation(t *testing.T) {
	router, token := newTestRouter(t, &stubChatService{}, &stubStudentService{})

	w := do(router, http.MethodPost, "/api/chats/c1/messages", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
}

func TestChatHandler_ServiceError(t *testing.T) {
	router, token := newTestRouter(t, &stubChatService{sendErr: errors.New("unauthorized access to chat")}, &stubStudentService{})

	w := do(router, http.MethodPost, "/api/chats/c1/messages", token, `{"content":"hi"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "unauthorized access to chat", *resp.Error)
}

func TestChatHandler_CreateWithoutBody(t *testing.T) {
	chat := &stubChatService{}
	router, token := newTestRouter(t, chat, &stubStudentService{})

	w := do(router, http.MethodPost, "/api/chats", token, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", chat.lastUser)
}

func TestStudentHandler(t *testing.T) {
	students := &stubStudentService{}
	router, token := newTestRouter(t, &stubChatService{}, students)

	w := do(router, http.MethodGet, "/api/students?college="+url.QueryEscape("计算机学院")+"&grade=2023&page=1&page_size=10", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, students.lastReq)
	assert.Equal(t, "计算机学院", students.lastReq.College)
	assert.Equal(t, 2023, students.lastReq.Grade)
	assert.Equal(t, 10, students.lastReq.PageSize)

	w = do(router, http.MethodGet, "/api/students?grade=abc", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/students/"+url.PathEscape("赵六"), token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
