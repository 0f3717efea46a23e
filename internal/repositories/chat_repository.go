package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/pkg/mongodb"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error
	Touch(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]*models.Chat, int64, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	DeleteMessages(ctx context.Context, chatID primitive.ObjectID) error
	FindMessagesByChat(ctx context.Context, chatID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error)
}

type chatRepository struct {
	chatCollection    *mongo.Collection
	messageCollection *mongo.Collection
}

func NewChatRepository(mongoClient *mongodb.MongoDBClient) ChatRepository {
	return newChatRepository(
		mongoClient.GetCollectionByName("chats"),
		mongoClient.GetCollectionByName("messages"),
	)
}

func newChatRepository(chats, messages *mongo.Collection) *chatRepository {
	return &chatRepository{chatCollection: chats, messageCollection: messages}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	_, err := r.chatCollection.InsertOne(ctx, chat)
	return err
}

func (r *chatRepository) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) error {
	update := bson.M{"$set": bson.M{"title": title, "updated_at": time.Now()}}
	res, err := r.chatCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Touch bumps updated_at so recently used chats list first.
func (r *chatRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.chatCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": time.Now()}})
	return err
}

func (r *chatRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.chatCollection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *chatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.chatCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]*models.Chat, int64, error) {
	chats := make([]*models.Chat, 0)
	filter := bson.M{"user_id": userID}

	total, err := r.chatCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(skipFor(page, pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.chatCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &chats)
	return chats, total, err
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	_, err := r.messageCollection.InsertOne(ctx, message)
	return err
}

func (r *chatRepository) DeleteMessages(ctx context.Context, chatID primitive.ObjectID) error {
	_, err := r.messageCollection.DeleteMany(ctx, bson.M{"chat_id": chatID})
	return err
}

func (r *chatRepository) FindMessagesByChat(ctx context.Context, chatID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error) {
	messages := make([]*models.Message, 0)
	filter := bson.M{"chat_id": chatID}

	total, err := r.messageCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(skipFor(page, pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "created_at", Value: 1}}) // Ascending order for messages

	cursor, err := r.messageCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &messages)
	return messages, total, err
}

func skipFor(page, pageSize int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * pageSize)
}
