package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("IS_DOCKER", "true")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.True(t, env.IsDocker)
	assert.Equal(t, "3000", env.Port)
	assert.Equal(t, "redis", env.ConversationStore)
	assert.Equal(t, 24*time.Hour, env.ConversationTTL)
	assert.Equal(t, 8*time.Second, env.LLMTimeout)
	assert.Equal(t, 6, env.HistoryWindow)
	assert.True(t, env.SeedOnStart)
	assert.Empty(t, env.LLMProvider)
}

func TestLoadEnv_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"4000\"\nstudents_driver: mysql\nstudents_port: \"3306\"\nhistory_window: 4\n"), 0o600))

	t.Setenv("IS_DOCKER", "true")
	t.Setenv("ASSISTANT_CONFIG_FILE", path)
	t.Setenv("ASSISTANT_PORT", "5000")
	t.Setenv("ASSISTANT_CONVERSATION_STORE", "sqlite")
	t.Setenv("ASSISTANT_SQLITE_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("ASSISTANT_LLM_TIMEOUT", "3s")
	t.Setenv("ASSISTANT_SEED_ON_START", "false")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "5000", env.Port)
	assert.Equal(t, "mysql", env.StudentsDriver)
	assert.Equal(t, "3306", env.StudentsPort)
	assert.Equal(t, 4, env.HistoryWindow)
	assert.Equal(t, "sqlite", env.ConversationStore)
	assert.Equal(t, 3*time.Second, env.LLMTimeout)
	assert.False(t, env.SeedOnStart)
}

func TestLoadEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown students driver", "ASSISTANT_STUDENTS_DRIVER", "oracle"},
		{"unknown store", "ASSISTANT_CONVERSATION_STORE", "memcached"},
		{"short jwt secret", "ASSISTANT_JWT_SECRET", "short"},
		{"openai without key", "ASSISTANT_LLM_PROVIDER", "openai"},
		{"bad mongo uri", "ASSISTANT_MONGODB_URI", "not a uri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("IS_DOCKER", "true")
			t.Setenv("ASSISTANT_LLM_MODEL", "gpt-4o-mini")
			t.Setenv(tt.key, tt.val)

			_, err := LoadEnv()
			assert.Error(t, err)
		})
	}
}
