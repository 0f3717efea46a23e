package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/internal/repositories"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// fakeStudents is an in-memory StudentRepository.
type fakeStudents struct {
	mu       sync.Mutex
	rows     []dbmanager.Student
	queries  []string
	executed []string

	runResult *dbmanager.QueryExecutionResult
	execErr   error
	countErr  error
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{rows: []dbmanager.Student{
		{ID: 1, StudentID: "2023001", Name: "张三", ClassName: "软件1班", College: "计算机学院", Major: "软件工程", Grade: 2023, Gender: "男", Phone: "13800000001"},
		{ID: 2, StudentID: "2023002", Name: "李四", ClassName: "计科2班", College: "计算机学院", Major: "计算机科学与技术", Grade: 2023, Gender: "女", Phone: "13800000002"},
		{ID: 3, StudentID: "2022001", Name: "王五", ClassName: "自动化1班", College: "电气学院", Major: "自动化", Grade: 2022, Gender: "男", Phone: "13800000003"},
	}}
}

func studentRow(s dbmanager.Student) map[string]interface{} {
	return map[string]interface{}{
		"id": int64(s.ID), "student_id": s.StudentID, "name": s.Name, "class_name": s.ClassName,
		"college": s.College, "major": s.Major, "grade": int64(s.Grade), "gender": s.Gender, "phone": s.Phone,
	}
}

func (f *fakeStudents) Query(_ context.Context, filter dbmanager.StudentFilter) ([]dbmanager.Student, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dbmanager.Student
	for _, s := range f.rows {
		if filter.College != "" && s.College != filter.College {
			continue
		}
		if filter.Grade != 0 && s.Grade != filter.Grade {
			continue
		}
		if filter.Gender != "" && s.Gender != filter.Gender {
			continue
		}
		out = append(out, s)
	}
	total := int64(len(out))
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = nil
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeStudents) GetByKey(_ context.Context, name string) ([]map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]interface{}
	for _, s := range f.rows {
		if s.Name == name {
			out = append(out, studentRow(s))
		}
	}
	return out, nil
}

func (f *fakeStudents) DistinctValues(_ context.Context, column string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, s := range f.rows {
		v := fmt.Sprint(studentRow(s)[column])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStudents) CountBy(ctx context.Context, column string) ([]dbmanager.GroupCount, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	values, _ := f.DistinctValues(ctx, column)
	f.mu.Lock()
	defer f.mu.Unlock()
	groups := make([]dbmanager.GroupCount, 0, len(values))
	for _, v := range values {
		var n int64
		for _, s := range f.rows {
			if fmt.Sprint(studentRow(s)[column]) == v {
				n++
			}
		}
		groups = append(groups, dbmanager.GroupCount{Value: v, Count: n})
	}
	return groups, nil
}

func (f *fakeStudents) RunQuery(_ context.Context, statement string) *dbmanager.QueryExecutionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, statement)
	if f.runResult != nil {
		return f.runResult
	}
	return &dbmanager.QueryExecutionResult{
		Columns:       []string{"count"},
		Rows:          []map[string]interface{}{{"count": int64(2)}},
		ExecutionTime: 3,
	}
}

func (f *fakeStudents) ExecuteStatement(_ context.Context, statement string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, statement)
	if f.execErr != nil {
		return 0, f.execErr
	}
	return 1, nil
}

func (f *fakeStudents) Seed(context.Context) (int, error)   { return 0, nil }
func (f *fakeStudents) VerifySchema(context.Context) error { return nil }

func (f *fakeStudents) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

func newTestRunner(students *fakeStudents, store repositories.ConversationStore, window int) *TurnRunner {
	assistant := nlq.NewAssistant(schema.NewRegistry(students), students, nil, nlq.Config{})
	return NewTurnRunner(assistant, students, store, window)
}

// memoryStore is an in-memory ConversationStore.
type memoryStore struct {
	mu      sync.Mutex
	states  map[string]repositories.ConversationState
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]repositories.ConversationState)}
}

func (m *memoryStore) Load(_ context.Context, id string) (*repositories.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state, ok := m.states[id]
	if !ok {
		return nil, repositories.ErrConversationNotFound
	}
	state.Window = append([]nlq.Turn(nil), state.Window...)
	return &state, nil
}

func (m *memoryStore) Save(_ context.Context, id string, state *repositories.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = *state
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

func (m *memoryStore) get(id string) (repositories.ConversationState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	return s, ok
}

// fakeChatRepo is an in-memory ChatRepository.
type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[primitive.ObjectID]*models.Chat
	messages []*models.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[primitive.ObjectID]*models.Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *chat
	r.chats[chat.ID] = &c
	return nil
}

func (r *fakeChatRepo) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.Title = title
	return nil
}

func (r *fakeChatRepo) Touch(context.Context, primitive.ObjectID) error { return nil }

func (r *fakeChatRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chats, id)
	return nil
}

func (r *fakeChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeChatRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, page, pageSize int) ([]*models.Chat, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Chat
	for _, c := range r.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeChatRepo) CreateMessage(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeChatRepo) DeleteMessages(_ context.Context, chatID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ChatID != chatID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeChatRepo) FindMessagesByChat(_ context.Context, chatID primitive.ObjectID, page, pageSize int) ([]*models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}
