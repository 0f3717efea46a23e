package nlq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulePlanner_Priority(t *testing.T) {
	p := NewRulePlanner(nil)
	assert.Equal(t,
		[]Intent{IntentBooleanCheck, IntentDelete, IntentUpdate, IntentInsert, IntentSelect, IntentCount},
		p.Priority())
}

func TestRulePlanner_Classify(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	tests := []struct {
		text string
		want Intent
	}{
		{"统计计算机学院人数", IntentCount},
		{"count each college's population", IntentCount},
		{"查询张三信息", IntentSelect},
		{"query Zhang San info", IntentSelect},
		{"张三", IntentSelect},
		{"统计张三", IntentCount},
		{"张三是男生吗", IntentBooleanCheck},
		{"is Zhang San male?", IntentBooleanCheck},
		{"有没有王五?", IntentBooleanCheck},
		{"张三是什么专业?", IntentSelect},
		{"删除张三", IntentDelete},
		{"是否删除张三?", IntentDelete},
		{"修改张三的手机号为13900000000", IntentUpdate},
		{"添加一名学生", IntentInsert},
		{"你好", IntentChat},
		{"今天天气怎么样", IntentChat},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.text, dicts))
		})
	}
}

func TestRulePlanner_Count(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	tests := []struct {
		text string
		stmt string
		kind ResponseKind
	}{
		{"count each college's population", "SELECT college, COUNT(*) AS count FROM students GROUP BY college", KindSelect},
		{"统计各专业人数", "SELECT major, COUNT(*) AS count FROM students GROUP BY major", KindSelect},
		{"统计男女人数", "SELECT gender, COUNT(*) AS count FROM students GROUP BY gender", KindSelect},
		{"统计各学院男生人数", "SELECT college, COUNT(*) AS count FROM students WHERE gender = '男' GROUP BY college", KindSelect},
		{"count Computer College population", "SELECT COUNT(*) AS count FROM students WHERE college = 'Computer College'", KindCount},
		{"统计计算机学院人数", "SELECT COUNT(*) AS count FROM students WHERE college = '计算机学院'", KindCount},
		{"统计2023级人数", "SELECT COUNT(*) AS count FROM students WHERE grade = 2023", KindCount},
		{"统计软件2班人数", "SELECT COUNT(*) AS count FROM students WHERE class_name = '软件2班'", KindCount},
		{"统计2班人数", "SELECT COUNT(*) AS count FROM students WHERE class_name = '软件2班'", KindCount},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			plan := p.Plan(context.Background(), tt.text, dicts)
			sql, ok := plan.(*SQLPlan)
			require.True(t, ok, "got %#v", plan)
			assert.Equal(t, tt.stmt, sql.Statement)
			assert.Equal(t, tt.kind, sql.Kind)
		})
	}
}

func TestRulePlanner_CountClarifications(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()
	ctx := context.Background()

	t.Run("no dimension lists every dimension", func(t *testing.T) {
		ask, ok := p.Plan(ctx, "统计人数", dicts).(*AskPlan)
		require.True(t, ok)
		assert.Equal(t, AwaitingCountDimension{}, ask.Pending)
		assert.Contains(t, ask.Message, "学院")
		assert.Contains(t, ask.Message, "计算机学院")
		assert.Contains(t, ask.Message, "软件1班")
	})

	t.Run("dimension without value lists its values", func(t *testing.T) {
		ask, ok := p.Plan(ctx, "统计学院人数", dicts).(*AskPlan)
		require.True(t, ok)
		assert.Equal(t, AwaitingCountDimension{}, ask.Pending)
		assert.Contains(t, ask.Message, "信息工程学院")
	})

	t.Run("ambiguous class fragment lists candidates", func(t *testing.T) {
		ask, ok := p.Plan(ctx, "统计1班人数", dicts).(*AskPlan)
		require.True(t, ok)
		assert.Equal(t, AwaitingCountDimension{}, ask.Pending)
		assert.Contains(t, ask.Message, "软件1班")
		assert.Contains(t, ask.Message, "网络1班")
	})

	t.Run("unknown class fragment", func(t *testing.T) {
		chat, ok := p.Plan(ctx, "统计9班人数", dicts).(*ChatPlan)
		require.True(t, ok)
		assert.Contains(t, chat.Message, "9班")
	})

	t.Run("long value lists are truncated", func(t *testing.T) {
		many := repo.dictionaries()
		many.Colleges = []string{"一学院", "二学院", "三学院", "四学院", "五学院", "六学院", "七学院"}
		ask, ok := p.Plan(ctx, "统计学院人数", many).(*AskPlan)
		require.True(t, ok)
		assert.Contains(t, ask.Message, "五学院等")
		assert.NotContains(t, ask.Message, "六学院")
	})
}

func TestRulePlanner_Select(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	tests := []struct {
		text string
		stmt string
	}{
		{"查询张三信息", "SELECT * FROM students WHERE name = '张三'"},
		{"张三", "SELECT * FROM students WHERE name = '张三'"},
		{"query Li Lei info", "SELECT * FROM students WHERE name = 'Li Lei'"},
		{"查询计算机学院的学生", "SELECT * FROM students WHERE college = '计算机学院'"},
		{"查询所有学生", "SELECT * FROM students LIMIT 50"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sql, ok := p.Plan(context.Background(), tt.text, dicts).(*SQLPlan)
			require.True(t, ok)
			assert.Equal(t, tt.stmt, sql.Statement)
			assert.Equal(t, KindSelect, sql.Kind)
		})
	}

	t.Run("no subject asks", func(t *testing.T) {
		ask, ok := p.Plan(context.Background(), "查询", dicts).(*AskPlan)
		require.True(t, ok)
		assert.Equal(t, AwaitingSelectSubject{}, ask.Pending)
	})

	t.Run("unsafe subject is refused", func(t *testing.T) {
		_, ok := p.Plan(context.Background(), "query x' or '1'='1 info", dicts).(*ChatPlan)
		assert.True(t, ok)
	})

	for _, text := range []string{"show students by college", "查询各专业的学生", "show student of every grade"} {
		t.Run("grouping words are not a name: "+text, func(t *testing.T) {
			ask, ok := p.Plan(context.Background(), text, dicts).(*AskPlan)
			require.True(t, ok, "got %#v", p.Plan(context.Background(), text, dicts))
			assert.Equal(t, AwaitingSelectSubject{}, ask.Pending)
		})
	}
}

func TestRulePlanner_BooleanCheck(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	tests := []struct {
		text string
		want string
	}{
		{"is Zhang San male?", `Yes, Zhang San's gender is "male".`},
		{"张三是男生吗", "是的，张三的性别是“男”。"},
		{"张三是女生吗", "不是，张三的记录与“女生”不符。"},
		{"李四是计算机学院的吗?", "是的，李四的学院是“计算机学院”。"},
		{"有没有王五?", "有的，找到了名为“王五”的学生。"},
		{"有没有赵六?", "没有，找不到名为“赵六”的学生。"},
		{"is there a Li Lei?", `No, there is no student named "Li Lei".`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			chat, ok := p.Plan(context.Background(), tt.text, dicts).(*ChatPlan)
			require.True(t, ok)
			assert.Equal(t, tt.want, chat.Message)
		})
	}
}

func TestRulePlanner_BooleanCheckExistenceOfGroup(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	assert.Equal(t, IntentBooleanCheck, p.Classify("有没有计算机学院的学生?", dicts))

	sql, ok := p.Plan(context.Background(), "有没有计算机学院的学生?", dicts).(*SQLPlan)
	require.True(t, ok)
	assert.Equal(t, "SELECT COUNT(*) AS count FROM students WHERE college = '计算机学院'", sql.Statement)
	assert.Equal(t, KindCount, sql.Kind)

	chat, ok := p.Plan(context.Background(), "有没有物理学院的学生?", dicts).(*ChatPlan)
	require.True(t, ok)
	assert.NotContains(t, chat.Message, "物理学院")
}

func TestRulePlanner_BooleanCheckLookupFailure(t *testing.T) {
	repo := newFakeStudents()
	dicts := repo.dictionaries()
	repo.getErr = errors.New("db down")

	chat, ok := NewRulePlanner(repo).Plan(context.Background(), "张三是男生吗", dicts).(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgLookupFailed, true), chat.Message)
}

func TestRulePlanner_CheckClaim(t *testing.T) {
	p := NewRulePlanner(newFakeStudents())
	ctx := context.Background()

	chat, ok := p.CheckClaim(ctx, "王五是网络工程专业的吗", "王五", "网络工程").(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, "是的，王五的专业是“网络工程”。", chat.Message)

	chat, ok = p.CheckClaim(ctx, "is there a Wang Wu?", "Wang Wu", "").(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, `No, there is no student named "Wang Wu".`, chat.Message)

	chat, ok = p.CheckClaim(ctx, "is x a student?", "x; drop", "").(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgBadSubject, false), chat.Message)
}

func TestRulePlanner_Delete(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	for text, stmt := range map[string]string{
		"删除张三":            "DELETE FROM students WHERE name = '张三'",
		"删除张三的记录":         "DELETE FROM students WHERE name = '张三'",
		"delete Zhang San": "DELETE FROM students WHERE name = 'Zhang San'",
	} {
		sql, ok := p.Plan(context.Background(), text, dicts).(*SQLPlan)
		require.True(t, ok, text)
		assert.Equal(t, stmt, sql.Statement, text)
		assert.Equal(t, KindDelete, sql.Kind, text)
		assert.False(t, sql.Confirmed(), text)
	}

	tests := []struct {
		text string
		want string
	}{
		{"删除所有学生", phrase(msgDeleteGeneric, true)},
		{"delete all", phrase(msgDeleteGeneric, false)},
		{"删除张", phrase(msgDeleteGeneric, true)},
		{"删除", phrase(msgDeleteUsage, true)},
		{"删除赵六", "没有找到名为“赵六”的学生。"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			chat, ok := p.Plan(context.Background(), tt.text, dicts).(*ChatPlan)
			require.True(t, ok)
			assert.Equal(t, tt.want, chat.Message)
		})
	}
}

func TestRulePlanner_Update(t *testing.T) {
	repo := newFakeStudents()
	p := NewRulePlanner(repo)
	dicts := repo.dictionaries()

	tests := []struct {
		text string
		stmt string
	}{
		{"修改张三的手机号为13900000000", "UPDATE students SET phone = '13900000000' WHERE name = '张三'"},
		{"把李四的年级改为2024", "UPDATE students SET grade = 2024 WHERE name = '李四'"},
		{"把张三的性别改为女", "UPDATE students SET gender = '女' WHERE name = '张三'"},
		{"modify Zhang San's phone to 13900000000", "UPDATE students SET phone = '13900000000' WHERE name = 'Zhang San'"},
		{"update the major of Zhang San to Data Science", "UPDATE students SET major = 'Data Science' WHERE name = 'Zhang San'"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sql, ok := p.Plan(context.Background(), tt.text, dicts).(*SQLPlan)
			require.True(t, ok)
			assert.Equal(t, tt.stmt, sql.Statement)
			assert.Equal(t, KindUpdate, sql.Kind)
		})
	}

	refusals := []struct {
		text string
		want string
	}{
		{"修改张三的爱好为篮球", phrase(msgUpdateUsage, true)},
		{"修改张三", phrase(msgUpdateUsage, true)},
		{"修改张三的年级为明年", "“明年”不是有效的年级。"},
		{"修改赵六的专业为数学", "没有找到名为“赵六”的学生。"},
	}
	for _, tt := range refusals {
		t.Run(tt.text, func(t *testing.T) {
			chat, ok := p.Plan(context.Background(), tt.text, dicts).(*ChatPlan)
			require.True(t, ok)
			assert.Equal(t, tt.want, chat.Message)
		})
	}
}

func TestRulePlanner_InsertAndDefault(t *testing.T) {
	p := NewRulePlanner(newFakeStudents())

	chat, ok := p.Plan(context.Background(), "添加一名学生", nil).(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgInsertUnsupported, true), chat.Message)

	chat, ok = p.Plan(context.Background(), "今天天气怎么样", nil).(*ChatPlan)
	require.True(t, ok)
	assert.Equal(t, phrase(msgHelp, true), chat.Message)
}
