package dtos

type CreateChatRequest struct {
	Title string `json:"title" binding:"omitempty,max=100"`
}

type UpdateChatRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}

type ChatResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ChatListResponse struct {
	Chats []ChatResponse `json:"chats"`
	Total int64          `json:"total"`
}
