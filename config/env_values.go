package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ASSISTANT_"

type Environment struct {
	// Server configs
	IsDocker bool   `koanf:"is_docker"`
	Port     string `koanf:"port" validate:"required,numeric"`

	// Auth configs
	JWTSecret                 string `koanf:"jwt_secret" validate:"omitempty,min=16"`
	JWTExpirationMilliseconds int    `koanf:"jwt_expiration_milliseconds" validate:"gt=0"`

	// Chat transcript store
	MongoURI          string `koanf:"mongodb_uri" validate:"required,uri"`
	MongoDatabaseName string `koanf:"mongodb_db_name" validate:"required"`

	// Conversation state store: redis or sqlite
	ConversationStore string        `koanf:"conversation_store" validate:"oneof=redis sqlite"`
	ConversationTTL   time.Duration `koanf:"conversation_ttl" validate:"gt=0"`
	SQLitePath        string        `koanf:"sqlite_path" validate:"required_if=ConversationStore sqlite"`

	// Redis configs
	RedisHost     string `koanf:"redis_host" validate:"required_if=ConversationStore redis"`
	RedisPort     string `koanf:"redis_port" validate:"required_if=ConversationStore redis"`
	RedisUsername string `koanf:"redis_username"`
	RedisPassword string `koanf:"redis_password"`

	// Students database
	StudentsDriver   string `koanf:"students_driver" validate:"oneof=postgres mysql"`
	StudentsHost     string `koanf:"students_host" validate:"required"`
	StudentsPort     string `koanf:"students_port" validate:"required,numeric"`
	StudentsUsername string `koanf:"students_username" validate:"required"`
	StudentsPassword string `koanf:"students_password"`
	StudentsDatabase string `koanf:"students_database" validate:"required"`
	StudentsSSLMode  string `koanf:"students_ssl_mode"`
	SeedOnStart      bool   `koanf:"seed_on_start"`

	// Completion service; an empty provider runs the rule planner only
	LLMProvider          string        `koanf:"llm_provider" validate:"omitempty,oneof=openai gemini"`
	LLMModel             string        `koanf:"llm_model" validate:"required_with=LLMProvider"`
	OpenAIAPIKey         string        `koanf:"openai_api_key" validate:"required_if=LLMProvider openai"`
	OpenAIBaseURL        string        `koanf:"openai_base_url" validate:"omitempty,url"`
	GeminiAPIKey         string        `koanf:"gemini_api_key" validate:"required_if=LLMProvider gemini"`
	LLMMaxTokens         int           `koanf:"llm_max_tokens" validate:"gt=0"`
	LLMTemperature       float32       `koanf:"llm_temperature" validate:"gte=0,lte=2"`
	LLMTimeout           time.Duration `koanf:"llm_timeout" validate:"gt=0"`
	LLMRequestsPerSecond float64       `koanf:"llm_requests_per_second" validate:"gte=0"`
	HistoryWindow        int           `koanf:"history_window" validate:"gt=0"`

	TracingEnabled bool `koanf:"tracing_enabled"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":                        "3000",
		"jwt_expiration_milliseconds": 1000 * 60 * 60 * 24 * 10, // 10 days
		"mongodb_uri":                 "mongodb://localhost:27017/assistant",
		"mongodb_db_name":             "assistant",
		"conversation_store":          "redis",
		"conversation_ttl":            "24h",
		"sqlite_path":                 "assistant.db",
		"redis_host":                  "localhost",
		"redis_port":                  "6379",
		"students_driver":             "postgres",
		"students_host":               "localhost",
		"students_port":               "5432",
		"students_username":           "postgres",
		"students_database":           "students",
		"students_ssl_mode":           "disable",
		"seed_on_start":               true,
		"llm_max_tokens":              1024,
		"llm_temperature":             0.1,
		"llm_timeout":                 "8s",
		"llm_requests_per_second":     2.0,
		"history_window":              6,
	}
}

// LoadEnv builds the environment from defaults, an optional YAML file named by
// ASSISTANT_CONFIG_FILE, and ASSISTANT_* variables, in increasing precedence.
// A .env file is read first unless running in Docker.
func LoadEnv() (*Environment, error) {
	isDocker := os.Getenv("IS_DOCKER") == "true"
	if !isDocker {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found: %v", err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(envPrefix + "CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// ASSISTANT_REDIS_HOST -> redis_host
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Environment
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.IsDocker = isDocker

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Environment) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
