package cli

import (
	"context"
	"log"

	"github.com/hq040506/DL-student-assistant/config"
	"github.com/hq040506/DL-student-assistant/internal/di"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
)

// localSession is what the terminal commands need: the students database and a planner.
// It skips MongoDB and Redis entirely.
type localSession struct {
	manager   *dbmanager.Manager
	students  dbmanager.StudentRepository
	assistant *nlq.Assistant
}

func openLocalSession(ctx context.Context, cfg *config.Environment) (*localSession, error) {
	manager, students, err := di.ConnectStudents(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	client, err := di.NewLLMClient(cfg)
	if err != nil {
		log.Printf("Warning: LLM unavailable, using rule planner only: %v", err)
		client = nil
	}

	return &localSession{
		manager:   manager,
		students:  students,
		assistant: di.NewAssistant(cfg, students, client),
	}, nil
}

func (s *localSession) Close() error {
	return s.manager.Stop()
}
