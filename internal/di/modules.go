package di

import (
	"context"
	"log"
	"time"

	"go.uber.org/dig"

	"github.com/hq040506/DL-student-assistant/config"
	"github.com/hq040506/DL-student-assistant/internal/apis/handlers"
	"github.com/hq040506/DL-student-assistant/internal/repositories"
	"github.com/hq040506/DL-student-assistant/internal/services"
	"github.com/hq040506/DL-student-assistant/internal/utils"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/llm"
	"github.com/hq040506/DL-student-assistant/pkg/mongodb"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
	"github.com/hq040506/DL-student-assistant/pkg/redis"
)

var DiContainer *dig.Container

// closers run in reverse order on Shutdown.
var closers []func(ctx context.Context) error

func Initialize(env *config.Environment) {
	DiContainer = dig.New()
	closers = nil

	// Initialize MongoDB
	mongodbClient, err := mongodb.InitializeDatabaseConnection(mongodb.MongoDbConfigModel{
		ConnectionUrl: env.MongoURI,
		DatabaseName:  env.MongoDatabaseName,
	})
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB client: %v", err)
	}
	closers = append(closers, mongodbClient.Disconnect)

	// Redis is only needed when it backs the conversation store
	var redisRepo redis.IRedisRepositories
	if env.ConversationStore == "redis" {
		redisClient, err := redis.RedisClient(redis.ClientOptions{
			Host:     env.RedisHost,
			Port:     env.RedisPort,
			Username: env.RedisUsername,
			Password: env.RedisPassword,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		redisRepo = redis.NewRedisRepositories(redisClient)
		closers = append(closers, func(context.Context) error { return redisClient.Close() })
	}

	jwtService := utils.NewJWTService(
		env.JWTSecret,
		time.Millisecond*time.Duration(env.JWTExpirationMilliseconds),
	)

	// Provide all dependencies to the container
	if err := DiContainer.Provide(func() *mongodb.MongoDBClient { return mongodbClient }); err != nil {
		log.Fatalf("Failed to provide MongoDB client: %v", err)
	}

	if err := DiContainer.Provide(func() utils.JWTService { return jwtService }); err != nil {
		log.Fatalf("Failed to provide JWT service: %v", err)
	}

	if err := DiContainer.Provide(func(db *mongodb.MongoDBClient) repositories.ChatRepository {
		return repositories.NewChatRepository(db)
	}); err != nil {
		log.Fatalf("Failed to provide chat repository: %v", err)
	}

	if err := DiContainer.Provide(func(db *mongodb.MongoDBClient) repositories.UserRepository {
		return repositories.NewUserRepository(db)
	}); err != nil {
		log.Fatalf("Failed to provide user repository: %v", err)
	}

	// Conversation state lives next to Redis when configured, otherwise in a local SQLite file
	if err := DiContainer.Provide(func() (repositories.ConversationStore, error) {
		if redisRepo != nil {
			return repositories.NewRedisConversationStore(redisRepo, env.ConversationTTL), nil
		}
		store, err := repositories.NewSQLiteConversationStore(env.SQLitePath, env.ConversationTTL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func(context.Context) error { return store.Close() })
		return store, nil
	}); err != nil {
		log.Fatalf("Failed to provide conversation store: %v", err)
	}

	// Provide DB Manager together with the students repository over its connection
	dbManager, students, err := ConnectStudents(context.Background(), env, redisRepo)
	if err != nil {
		log.Fatalf("Failed to initialize students database: %v", err)
	}
	closers = append(closers, func(context.Context) error { return dbManager.Stop() })

	if err := DiContainer.Provide(func() *dbmanager.Manager { return dbManager }); err != nil {
		log.Fatalf("Failed to provide DB manager: %v", err)
	}

	if err := DiContainer.Provide(func() dbmanager.StudentRepository { return students }); err != nil {
		log.Fatalf("Failed to provide student repository: %v", err)
	}

	// Add LLM client; nil when no provider is configured
	if err := DiContainer.Provide(func() llm.Client {
		client, err := NewLLMClient(env)
		if err != nil {
			log.Printf("Warning: Failed to register %s client: %v", env.LLMProvider, err)
			return nil
		}
		return client
	}); err != nil {
		log.Fatalf("Failed to provide LLM client: %v", err)
	}

	if err := DiContainer.Provide(func(students dbmanager.StudentRepository, client llm.Client) *nlq.Assistant {
		return NewAssistant(env, students, client)
	}); err != nil {
		log.Fatalf("Failed to provide assistant: %v", err)
	}

	// Provide services
	if err := DiContainer.Provide(func(
		assistant *nlq.Assistant,
		students dbmanager.StudentRepository,
		store repositories.ConversationStore,
	) *services.TurnRunner {
		return services.NewTurnRunner(assistant, students, store, env.HistoryWindow)
	}); err != nil {
		log.Fatalf("Failed to provide turn runner: %v", err)
	}

	if err := DiContainer.Provide(func(userRepo repositories.UserRepository, jwt utils.JWTService) services.AuthService {
		return services.NewAuthService(userRepo, jwt)
	}); err != nil {
		log.Fatalf("Failed to provide auth service: %v", err)
	}

	if err := DiContainer.Provide(func(chatRepo repositories.ChatRepository, runner *services.TurnRunner) services.ChatService {
		return services.NewChatService(chatRepo, runner)
	}); err != nil {
		log.Fatalf("Failed to provide chat service: %v", err)
	}

	if err := DiContainer.Provide(func(students dbmanager.StudentRepository) services.StudentService {
		return services.NewStudentService(students)
	}); err != nil {
		log.Fatalf("Failed to provide student service: %v", err)
	}

	if err := DiContainer.Provide(func(students dbmanager.StudentRepository) services.VisualizationService {
		return services.NewVisualizationService(students)
	}); err != nil {
		log.Fatalf("Failed to provide visualization service: %v", err)
	}

	// Provide handlers
	if err := DiContainer.Provide(func(authService services.AuthService) *handlers.AuthHandler {
		return handlers.NewAuthHandler(authService)
	}); err != nil {
		log.Fatalf("Failed to provide auth handler: %v", err)
	}

	if err := DiContainer.Provide(func(chatService services.ChatService) *handlers.ChatHandler {
		return handlers.NewChatHandler(chatService)
	}); err != nil {
		log.Fatalf("Failed to provide chat handler: %v", err)
	}

	if err := DiContainer.Provide(func(studentService services.StudentService) *handlers.StudentHandler {
		return handlers.NewStudentHandler(studentService)
	}); err != nil {
		log.Fatalf("Failed to provide student handler: %v", err)
	}

	if err := DiContainer.Provide(func(visualizationService services.VisualizationService) *handlers.VisualizationHandler {
		return handlers.NewVisualizationHandler(visualizationService)
	}); err != nil {
		log.Fatalf("Failed to provide visualization handler: %v", err)
	}
}

// Shutdown releases the connections opened by Initialize.
func Shutdown(ctx context.Context) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			log.Printf("DI -> Shutdown -> %v", err)
		}
	}
	closers = nil
}

// GetAuthHandler retrieves the AuthHandler from the DI container
func GetAuthHandler() (*handlers.AuthHandler, error) {
	var handler *handlers.AuthHandler
	err := DiContainer.Invoke(func(h *handlers.AuthHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetChatHandler retrieves the ChatHandler from the DI container
func GetChatHandler() (*handlers.ChatHandler, error) {
	var handler *handlers.ChatHandler
	err := DiContainer.Invoke(func(h *handlers.ChatHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func GetStudentHandler() (*handlers.StudentHandler, error) {
	var handler *handlers.StudentHandler
	err := DiContainer.Invoke(func(h *handlers.StudentHandler) {
		handler = h
	})
	return handler, err
}

// GetVisualizationHandler returns the visualization handler
func GetVisualizationHandler() (*handlers.VisualizationHandler, error) {
	var handler *handlers.VisualizationHandler
	err := DiContainer.Invoke(func(h *handlers.VisualizationHandler) {
		handler = h
	})
	return handler, err
}
