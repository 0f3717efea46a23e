package di

import (
	"context"
	"fmt"
	"log"

	"github.com/hq040506/DL-student-assistant/config"
	"github.com/hq040506/DL-student-assistant/internal/constants"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/llm"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
	"github.com/hq040506/DL-student-assistant/pkg/redis"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// StudentsConnectionConfig maps the environment onto a dbmanager connection config.
func StudentsConnectionConfig(env *config.Environment) dbmanager.ConnectionConfig {
	cfg := dbmanager.ConnectionConfig{
		Type:     env.StudentsDriver,
		Host:     env.StudentsHost,
		Port:     env.StudentsPort,
		Database: env.StudentsDatabase,
		SSLMode:  env.StudentsSSLMode,
	}
	if env.StudentsUsername != "" {
		username := env.StudentsUsername
		cfg.Username = &username
	}
	if env.StudentsPassword != "" {
		password := env.StudentsPassword
		cfg.Password = &password
	}
	return cfg
}

// ConnectStudents opens the students database and returns the repository over it.
// redisRepo may be nil.
func ConnectStudents(ctx context.Context, env *config.Environment, redisRepo redis.IRedisRepositories) (*dbmanager.Manager, dbmanager.StudentRepository, error) {
	manager := dbmanager.NewManager(redisRepo)
	manager.RegisterDriver("postgres", dbmanager.NewPostgresDriver())
	manager.RegisterDriver("mysql", dbmanager.NewMySQLDriver())

	conn, err := manager.Connect(constants.StudentsConnection, StudentsConnectionConfig(env))
	if err != nil {
		manager.Stop()
		return nil, nil, fmt.Errorf("failed to connect to students database: %w", err)
	}

	students := dbmanager.NewStudentRepository(conn.DB)
	if env.SeedOnStart {
		if _, err := students.Seed(ctx); err != nil {
			manager.Stop()
			return nil, nil, err
		}
	}

	if err := students.VerifySchema(ctx); err != nil {
		manager.Stop()
		return nil, nil, err
	}
	return manager, students, nil
}

// NewLLMClient builds the completion client named by the environment. It returns
// nil without error when no provider is configured.
func NewLLMClient(env *config.Environment) (llm.Client, error) {
	if env.LLMProvider == "" {
		log.Println("DI -> NewLLMClient -> no LLM provider configured, using rule planner only")
		return nil, nil
	}

	apiKey := env.OpenAIAPIKey
	if env.LLMProvider == constants.Gemini {
		apiKey = env.GeminiAPIKey
	}
	model := env.LLMModel
	if model == "" {
		model = constants.DefaultModel(env.LLMProvider)
	}

	manager := llm.NewManager()
	err := manager.RegisterClient(env.LLMProvider, llm.Config{
		Provider:            env.LLMProvider,
		Model:               model,
		APIKey:              apiKey,
		BaseURL:             env.OpenAIBaseURL,
		MaxCompletionTokens: env.LLMMaxTokens,
		Temperature:         env.LLMTemperature,
		SystemPrompt:        constants.GetSystemPrompt(env.LLMProvider),
		ResponseSchema:      constants.GetLLMResponseSchema(env.LLMProvider),
	})
	if err != nil {
		return nil, err
	}
	return manager.GetClient(env.LLMProvider)
}

// NewAssistant builds the planner over the students repository. client may be nil.
func NewAssistant(env *config.Environment, students dbmanager.StudentRepository, client llm.Client) *nlq.Assistant {
	registry := schema.NewRegistry(students)
	return nlq.NewAssistant(registry, students, client, nlq.Config{
		LLMTimeout:    env.LLMTimeout,
		HistoryWindow: env.HistoryWindow,
		RateLimit:     env.LLMRequestsPerSecond,
		RateBurst:     1,
	})
}
