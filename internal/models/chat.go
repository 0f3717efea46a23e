package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultChatTitle = "New chat"

type Chat struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title  string             `bson:"title" json:"title"`
	Base   `bson:",inline"`
}

func NewChat(userID primitive.ObjectID, title string) *Chat {
	if title == "" {
		title = DefaultChatTitle
	}
	return &Chat{
		UserID: userID,
		Title:  title,
		Base:   NewBase(),
	}
}
