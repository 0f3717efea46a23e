package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// fixed width so stored timestamps compare as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteConversationStore keeps conversation state in a local file, for the
// terminal front end and single-node deployments without Redis.
type SQLiteConversationStore struct {
	db  *sql.DB
	ttl time.Duration

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteConversationStore opens or creates the database at dbPath.
// States idle for longer than ttl are treated as missing; zero keeps them forever.
func NewSQLiteConversationStore(dbPath string, ttl time.Duration) (*SQLiteConversationStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteConversationStore{
		db:      db,
		ttl:     ttl,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteConversationStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		turns      TEXT NOT NULL,
		pending    TEXT,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
	`)
	return err
}

// NewID returns a fresh, time-ordered conversation identifier.
func (s *SQLiteConversationStore) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteConversationStore) Load(ctx context.Context, conversationID string) (*ConversationState, error) {
	var (
		window    string
		pending   sql.NullString
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT turns, pending, updated_at FROM conversations WHERE id = ?`, conversationID,
	).Scan(&window, &pending, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	state := &ConversationState{}
	if state.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if s.ttl > 0 && time.Since(state.UpdatedAt) > s.ttl {
		return nil, ErrConversationNotFound
	}
	if err := json.Unmarshal([]byte(window), &state.Window); err != nil {
		return nil, fmt.Errorf("decode window: %w", err)
	}
	if pending.Valid && pending.String != "" {
		if err := json.Unmarshal([]byte(pending.String), &state.Pending); err != nil {
			return nil, fmt.Errorf("decode pending: %w", err)
		}
	}
	return state, nil
}

func (s *SQLiteConversationStore) Save(ctx context.Context, conversationID string, state *ConversationState) error {
	state.UpdatedAt = time.Now().UTC()

	window, err := json.Marshal(state.Window)
	if err != nil {
		return fmt.Errorf("encode window: %w", err)
	}
	var pending sql.NullString
	if state.Pending != nil {
		data, err := json.Marshal(state.Pending)
		if err != nil {
			return fmt.Errorf("encode pending: %w", err)
		}
		pending = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO conversations (id, turns, pending, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET turns = excluded.turns, pending = excluded.pending, updated_at = excluded.updated_at`,
		conversationID, string(window), pending, state.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *SQLiteConversationStore) Delete(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, conversationID)
	return err
}

// Purge removes conversations idle for longer than the store's ttl.
func (s *SQLiteConversationStore) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.ttl).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteConversationStore) Close() error {
	return s.db.Close()
}
