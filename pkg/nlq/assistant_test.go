package nlq

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
	"github.com/hq040506/DL-student-assistant/pkg/sqlguard"
)

func TestAssistant_CountWithoutDimensionAsks(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})

	for _, text := range []string{"统计人数", "一共有多少人", "how many students", "count", "学生总数是多少?"} {
		t.Run(text, func(t *testing.T) {
			ask, ok := a.Handle(context.Background(), text, nil, nil).(*AskPlan)
			require.True(t, ok)
			assert.Equal(t, AwaitingCountDimension{}, ask.Pending)
		})
	}
}

func TestAssistant_PlansOnlyAllowlistedTokens(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	allow := schema.NewRegistry(nil).Allowlist()

	inputs := []string{
		"count each college's population",
		"count Computer College population",
		"统计各学院男生人数",
		"统计2023级人数",
		"查询张三信息",
		"query Li Lei info",
		"查询计算机学院的学生",
		"查询所有学生",
		"query O'Neil info",
	}
	for _, text := range inputs {
		plan := a.Handle(context.Background(), text, nil, nil)
		sql, ok := plan.(*SQLPlan)
		if !ok {
			continue
		}
		for _, tok := range sqlguard.Tokens(sql.Statement) {
			_, allowed := allow[strings.ToLower(tok)]
			assert.True(t, allowed, "%q produced token %q", text, tok)
		}
	}
}

func TestAssistant_RejectsForeignTokens(t *testing.T) {
	client := replyWith(`{"type":"sql","sql":"SELECT * FROM students WHERE name = 'x'; DROP TABLE students","response_kind":"select"}`)
	a := newTestAssistant(newFakeStudents(), client, Config{})

	plan := a.Handle(context.Background(), "查询x信息", nil, nil)
	chat, ok := plan.(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgRejected, true), chat.Message)
}

func TestAssistant_ClarificationIsIdempotent(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	ctx := context.Background()

	first := a.Handle(ctx, "计算机学院", nil, AwaitingCountDimension{})
	second := a.Handle(ctx, "计算机学院", nil, AwaitingCountDimension{})
	assert.Equal(t, first, second)

	sql, ok := first.(*SQLPlan)
	require.True(t, ok)
	assert.Equal(t, "SELECT COUNT(*) AS count FROM students WHERE college = '计算机学院'", sql.Statement)
	assert.Equal(t, KindCount, sql.Kind)
}

func TestAssistant_UnresolvedClarificationAsksAgain(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})

	ask, ok := a.Handle(context.Background(), "随便", nil, AwaitingCountDimension{}).(*AskPlan)
	require.True(t, ok)
	assert.Equal(t, AwaitingCountDimension{}, ask.Pending)
}

func TestAssistant_SelectSubjectClarification(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	ctx := context.Background()

	ask, ok := a.Handle(ctx, "查询", nil, nil).(*AskPlan)
	require.True(t, ok)
	require.Equal(t, AwaitingSelectSubject{}, ask.Pending)

	sql, ok := a.Handle(ctx, "李四", nil, ask.Pending).(*SQLPlan)
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM students WHERE name = '李四'", sql.Statement)

	sql, ok = a.Handle(ctx, "Li Lei", nil, AwaitingSelectSubject{}).(*SQLPlan)
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM students WHERE name = 'Li Lei'", sql.Statement)
	assert.Equal(t, "query results for query Li Lei info:", sql.Preamble)
}

func TestAssistant_MutationsNeedConfirmation(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	ctx := context.Background()

	for _, text := range []string{"删除张三", "delete Zhang San", "修改张三的手机号为13900000000"} {
		t.Run(text, func(t *testing.T) {
			plan := a.Handle(ctx, text, nil, nil)
			ask, ok := plan.(*AskPlan)
			require.True(t, ok, "mutation returned %#v", plan)
			pending, ok := ask.Pending.(AwaitingDestructiveConfirmation)
			require.True(t, ok)
			assert.True(t, pending.Kind.Mutating())
			assert.Contains(t, ask.Message, pending.Statement)
		})
	}
}

func TestAssistant_DeleteScenario(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	ctx := context.Background()

	ask, ok := a.Handle(ctx, "delete Zhang San", nil, nil).(*AskPlan)
	require.True(t, ok)
	want := AwaitingDestructiveConfirmation{Statement: "DELETE FROM students WHERE name = 'Zhang San'", Kind: KindDelete}
	require.Equal(t, want, ask.Pending)

	t.Run("yes executes the exact statement", func(t *testing.T) {
		sql, ok := a.Handle(ctx, "yes", nil, ask.Pending).(*SQLPlan)
		require.True(t, ok)
		assert.Equal(t, want.Statement, sql.Statement)
		assert.Equal(t, KindDelete, sql.Kind)
		assert.True(t, sql.Confirmed())
	})

	t.Run("cancel discards it", func(t *testing.T) {
		chat, ok := a.Handle(ctx, "cancel", nil, ask.Pending).(*ChatPlan)
		require.True(t, ok)
		assert.Equal(t, phrase(msgCancelled, false), chat.Message)
	})

	t.Run("anything else fails closed", func(t *testing.T) {
		for _, reply := range []string{"maybe", "yes please delete everyone", "好吧我想想", ""} {
			plan := a.Handle(ctx, reply, nil, ask.Pending)
			chat, ok := plan.(*ChatPlan)
			require.True(t, ok, "reply %q produced %#v", reply, plan)
			assert.Equal(t, phrase(msgCancelledUnclear, isChinese(reply)), chat.Message)
		}
	})
}

func TestAssistant_ChineseConfirmation(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	ctx := context.Background()

	ask, ok := a.Handle(ctx, "删除张三", nil, nil).(*AskPlan)
	require.True(t, ok)
	assert.Contains(t, ask.Message, "确认执行吗")

	sql, ok := a.Handle(ctx, "确认！", nil, ask.Pending).(*SQLPlan)
	require.True(t, ok)
	assert.True(t, sql.Confirmed())
	assert.Equal(t, "DELETE FROM students WHERE name = '张三'", sql.Statement)

	chat, ok := a.Handle(ctx, "算了", nil, ask.Pending).(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgCancelled, true), chat.Message)
}

func TestAssistant_TamperedConfirmationIsRevalidated(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	pending := AwaitingDestructiveConfirmation{Statement: "DROP TABLE students", Kind: KindDelete}

	_, ok := a.Handle(context.Background(), "yes", nil, pending).(*ChatPlan)
	assert.True(t, ok)
}

func TestAssistant_ReadPlansAreNotConfirmed(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})

	sql, ok := a.Handle(context.Background(), "统计计算机学院人数", nil, nil).(*SQLPlan)
	require.True(t, ok)
	assert.False(t, sql.Confirmed())
	assert.Equal(t, "📊 “统计计算机学院人数” 的统计结果：", sql.Preamble)
}

func TestAssistant_Prefilter(t *testing.T) {
	client := replyWith(`{"type":"chat","message":"from the model"}`)
	a := newTestAssistant(newFakeStudents(), client, Config{})
	ctx := context.Background()

	for text, key := range map[string]msgKey{
		"你好":              msgGreeting,
		"hello!":          msgGreeting,
		"谢谢":              msgThanks,
		"thank you so much": msgThanks,
		"你能做什么?":          msgHelp,
		"what can you do?": msgHelp,
	} {
		chat, ok := a.Handle(ctx, text, nil, nil).(*ChatPlan)
		require.True(t, ok, text)
		assert.Equal(t, phrase(key, isChinese(text)), chat.Message, text)
	}
	assert.Equal(t, 0, client.Calls())

	// trigger words always reach a planner
	chat, ok := a.Handle(ctx, "你好，帮我查询张三信息", nil, nil).(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, "from the model", chat.Message)
	assert.Equal(t, 1, client.Calls())
}

func TestAssistant_RecoversFromPanics(t *testing.T) {
	repo := newFakeStudents()
	repo.panicOnGet = true
	a := newTestAssistant(repo, nil, Config{})

	var plan Plan
	assert.NotPanics(t, func() {
		plan = a.Handle(context.Background(), "张三是男生吗", nil, nil)
	})
	chat, ok := plan.(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgHelp, true), chat.Message)
}

func TestAssistant_EmptyInput(t *testing.T) {
	a := newTestAssistant(newFakeStudents(), nil, Config{})
	_, ok := a.Handle(context.Background(), "   ", nil, nil).(*ChatPlan)
	assert.True(t, ok)
}
