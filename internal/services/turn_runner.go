package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode"

	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/internal/repositories"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
	"github.com/hq040506/DL-student-assistant/pkg/nlq"
)

// Planner plans one turn of a conversation.
type Planner interface {
	Handle(ctx context.Context, text string, history []nlq.Turn, pending nlq.Pending) nlq.Plan
}

// TurnResult is one planned and executed turn.
type TurnResult struct {
	// Kind is chat, ask, or the response kind of an executed statement.
	Kind          string
	Message       string
	Statement     string
	Columns       []string
	Rows          []map[string]interface{}
	RowsAffected  *int64
	ExecutionTime *int
	Error         *dbmanager.QueryError
	Chart         *models.ChartSuggestion
	PendingKind   *string
}

// IsStatement reports whether the turn ran a statement.
func (r *TurnResult) IsStatement() bool {
	return r.Statement != ""
}

// TurnRunner drives one conversation turn: load state, plan, execute, save.
// Turns of the same conversation run one at a time.
type TurnRunner struct {
	planner       Planner
	students      dbmanager.StudentRepository
	store         repositories.ConversationStore
	historyWindow int

	mu    sync.Mutex
	locks map[string]*conversationLock
}

type conversationLock struct {
	sync.Mutex
	refs int
}

func NewTurnRunner(planner Planner, students dbmanager.StudentRepository, store repositories.ConversationStore, historyWindow int) *TurnRunner {
	if historyWindow <= 0 {
		historyWindow = nlq.DefaultHistoryWindow
	}
	return &TurnRunner{
		planner:       planner,
		students:      students,
		store:         store,
		historyWindow: historyWindow,
		locks:         make(map[string]*conversationLock),
	}
}

// Run plans and executes text as the next turn of conversationID.
func (r *TurnRunner) Run(ctx context.Context, conversationID, text string) (*TurnResult, error) {
	unlock := r.lock(conversationID)
	defer unlock()

	state, err := r.store.Load(ctx, conversationID)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		state = &repositories.ConversationState{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	pending, err := nlq.FromRecord(state.Pending)
	if err != nil {
		log.Printf("TurnRunner -> Run -> dropping unreadable pending state of %s: %v", conversationID, err)
		pending = nil
	}

	plan := r.planner.Handle(ctx, text, state.Window, pending)
	result := r.execute(ctx, text, plan)

	state.Append(r.historyWindow,
		nlq.Turn{Role: nlq.RoleUser, Content: text},
		nlq.Turn{Role: nlq.RoleAssistant, Content: result.Message},
	)
	state.Pending = nlq.ToRecord(nlq.NextPending(plan))
	state.UpdatedAt = time.Now()
	if err := r.store.Save(ctx, conversationID, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return result, nil
}

// Reset forgets the window and pending state of a conversation.
func (r *TurnRunner) Reset(ctx context.Context, conversationID string) error {
	unlock := r.lock(conversationID)
	defer unlock()
	return r.store.Delete(ctx, conversationID)
}

func (r *TurnRunner) execute(ctx context.Context, text string, plan nlq.Plan) *TurnResult {
	switch p := plan.(type) {
	case *nlq.ChatPlan:
		return &TurnResult{Kind: "chat", Message: p.Message}
	case *nlq.AskPlan:
		result := &TurnResult{Kind: "ask", Message: p.Message}
		if p.Pending != nil {
			kind := string(p.Pending.PendingKind())
			result.PendingKind = &kind
		}
		return result
	case *nlq.SQLPlan:
		if p.Kind.Mutating() {
			return r.executeMutation(ctx, text, p)
		}
		return r.executeRead(ctx, text, p)
	}
	return &TurnResult{Kind: "chat", Message: say(text, "我暂时无法处理这个请求。", "I can't handle that request right now.")}
}

func (r *TurnRunner) executeRead(ctx context.Context, text string, p *nlq.SQLPlan) *TurnResult {
	result := &TurnResult{Kind: string(p.Kind), Statement: p.Statement}

	res := r.students.RunQuery(ctx, p.Statement)
	result.ExecutionTime = &res.ExecutionTime
	if res.Error != nil {
		log.Printf("TurnRunner -> executeRead -> %v", res.Error)
		result.Error = res.Error
		result.Message = say(text, "❌ 查询执行失败，请稍后重试。", "❌ The query failed, please try again later.")
		return result
	}

	result.Columns = res.Columns
	result.Rows = res.Rows
	if len(res.Rows) == 0 {
		result.Message = p.Preamble + "\n" + say(text, "没有找到符合条件的记录。", "No matching records.")
		return result
	}
	result.Message = p.Preamble + "\n" + say(text,
		fmt.Sprintf("共 %d 条记录。", len(res.Rows)),
		fmt.Sprintf("%d row(s).", len(res.Rows)))
	result.Chart = SuggestChart(res.Columns, res.Rows, "")
	return result
}

func (r *TurnRunner) executeMutation(ctx context.Context, text string, p *nlq.SQLPlan) *TurnResult {
	result := &TurnResult{Kind: string(p.Kind), Statement: p.Statement}
	if !p.Confirmed() {
		log.Printf("TurnRunner -> executeMutation -> refusing unconfirmed %s", p.Kind)
		result.Message = say(text, "该操作需要确认后才能执行。", "This operation needs confirmation first.")
		return result
	}

	start := time.Now()
	affected, err := r.students.ExecuteStatement(ctx, p.Statement)
	elapsed := int(time.Since(start).Milliseconds())
	result.ExecutionTime = &elapsed
	if err != nil {
		log.Printf("TurnRunner -> executeMutation -> %v", err)
		var qe *dbmanager.QueryError
		if errors.As(err, &qe) {
			result.Error = qe
		} else {
			result.Error = &dbmanager.QueryError{Code: dbmanager.CodeExecution, Message: "Statement failed", Details: err.Error()}
		}
		if dbmanager.IsConstraintViolation(err) {
			result.Message = say(text, "❌ 执行失败：数据与已有记录冲突。", "❌ Failed: the change conflicts with existing records.")
		} else {
			result.Message = say(text, "❌ 执行失败，请稍后重试。", "❌ The statement failed, please try again later.")
		}
		return result
	}

	result.RowsAffected = &affected
	result.Message = say(text,
		fmt.Sprintf("✅ 已执行，影响 %d 行。", affected),
		fmt.Sprintf("✅ Done, %d row(s) affected.", affected))
	return result
}

func (r *TurnRunner) lock(conversationID string) func() {
	r.mu.Lock()
	l, ok := r.locks[conversationID]
	if !ok {
		l = &conversationLock{}
		r.locks[conversationID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, conversationID)
		}
		r.mu.Unlock()
	}
}

// say picks the Chinese or English phrasing after the user's text.
func say(text, zh, en string) string {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return zh
		}
	}
	return en
}
