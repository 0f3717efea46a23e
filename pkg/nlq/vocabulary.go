package nlq

// Trigger vocabularies. ASCII entries are lower case and match whole words.
var (
	countTriggers = []string{
		"统计", "人数", "多少", "几个", "几人", "几名", "总数",
		"count", "how many", "number of", "statistics", "total",
	}
	selectTriggers = []string{
		"查询", "查看", "查一下", "查找", "信息", "资料", "详情",
		"query", "show", "lookup", "look up", "info", "information", "details", "find", "search",
	}
	deleteTriggers = []string{
		"删除", "删掉", "移除",
		"delete", "remove",
	}
	updateTriggers = []string{
		"修改", "更新", "更改", "改为", "改成",
		"modify", "update", "change",
	}
	insertTriggers = []string{
		"添加", "新增", "插入", "录入",
		"add", "insert", "create", "enroll",
	}
	aggregateTerms = []string{
		"各", "每个", "每", "分别", "按", "男女",
		"each", "every", "per", "by",
	}
	interrogatives = []string{"吗", "么", "嘛", "?", "是不是", "有没有", "是否"}
	existenceTerms = []string{"有没有", "是否有", "是否存在", "is there", "are there"}
	whWords        = []string{"什么", "哪", "谁", "几", "怎么", "多少", "what", "which", "who", "where", "how", "when"}
)

// allTriggers is every word that marks a data request; the pre-filter never fires on them.
func allTriggers() [][]string {
	return [][]string{countTriggers, selectTriggers, deleteTriggers, updateTriggers, insertTriggers}
}

// filler words removed when isolating a subject or fragment
var fillerTerms = []string{
	"请", "帮我", "我想", "一下", "的", "学生", "同学", "名字", "叫", "这个人", "记录", "情况",
	"please", "me", "the", "of", "for", "about", "student", "students", "named", "called",
	"record", "profile", "population", "people", "in", "a", "an", "there", "are", "is",
}

// affirmative and negative replies to a confirmation prompt
var (
	affirmativeReplies = map[string]struct{}{
		"yes": {}, "y": {}, "ok": {}, "okay": {}, "sure": {}, "confirm": {}, "confirmed": {}, "go ahead": {},
		"是": {}, "是的": {}, "确认": {}, "确定": {}, "好": {}, "好的": {}, "执行": {}, "对": {}, "可以": {},
	}
	negativeReplies = map[string]struct{}{
		"no": {}, "n": {}, "cancel": {}, "stop": {}, "abort": {}, "nope": {},
		"否": {}, "不": {}, "不要": {}, "取消": {}, "算了": {}, "不是": {}, "不用": {},
	}
)

// generic delete subjects that would hit many rows
var genericSubjectTerms = []string{
	"所有", "全部", "全体", "所有人", "学生", "同学", "数据", "记录", "表",
	"all", "everyone", "everybody", "everything", "students", "records", "table", "*",
}

type msgKey int

const (
	msgHelp msgKey = iota
	msgGreeting
	msgThanks
	msgAskDimension
	msgAskDimensionValue
	msgAskClassCandidates
	msgNoClassMatch
	msgAskSubject
	msgBadSubject
	msgUnknownStudent
	msgUpdateUsage
	msgUpdateBadValue
	msgDeleteUsage
	msgDeleteGeneric
	msgInsertUnsupported
	msgConfirm
	msgCancelled
	msgCancelledUnclear
	msgRejected
	msgLookupFailed
	msgExists
	msgNotExists
	msgVerdictYes
	msgVerdictNo
	msgNoRecord
	msgStatisticsFor
	msgResultsFor
	msgExecutedFor
)

var phrasebook = map[msgKey][2]string{
	msgHelp: {
		"我可以帮你查询学生信息或统计人数，例如：查询张三信息、统计计算机学院人数、统计各专业人数。",
		"I can look up students or count them, e.g. \"query Zhang San info\", \"count Computer College population\", \"count each major\".",
	},
	msgGreeting: {
		"你好！我是学生信息助手。" + "可以问我“查询张三信息”或“统计各学院人数”。",
		"Hello! I'm the student records assistant. Try \"query Zhang San info\" or \"count each college\".",
	},
	msgThanks: {"不客气，还有什么想查的吗？", "You're welcome. Anything else to look up?"},
	msgAskDimension: {
		"你想按什么维度统计？可选：\n%s\n也可以说“统计各学院人数”查看分布。",
		"Which dimension should I count by? Options:\n%s\nYou can also say \"count each college\" for a breakdown.",
	},
	msgAskDimensionValue: {
		"你想统计哪个%s的人数？可选：%s",
		"Which %s should I count? Options: %s",
	},
	msgAskClassCandidates: {
		"找到多个匹配的班级：%s。请说出完整的班级名称。",
		"Several classes match: %s. Please repeat the full class name.",
	},
	msgNoClassMatch: {"没有找到匹配“%s”的班级。", "No class matches \"%s\"."},
	msgAskSubject:   {"你想查询哪位学生？请提供姓名。", "Which student do you want to look up? Please give a name."},
	msgBadSubject:   {"无法识别要查询的学生姓名，请换个说法。", "I couldn't recognise the student's name, please rephrase."},
	msgUnknownStudent: {
		"没有找到名为“%s”的学生。",
		"There is no student named \"%s\".",
	},
	msgUpdateUsage: {
		"修改请使用“修改<姓名>的<字段>为<新值>”，字段可以是手机号、班级、专业、学院、年级、性别。",
		"To modify a record say \"modify <name>'s <field> to <value>\"; field is one of phone, class, major, college, grade, gender.",
	},
	msgUpdateBadValue: {"“%s”不是有效的%s。", "\"%s\" is not a valid %s."},
	msgDeleteUsage: {
		"删除请使用“删除<姓名>”。",
		"To delete a record say \"delete <name>\".",
	},
	msgDeleteGeneric: {
		"为避免误删，只能按完整姓名删除单个学生。",
		"To avoid accidental mass deletion, only a single student can be deleted by full name.",
	},
	msgInsertUnsupported: {
		"新增学生需要智能助手来整理完整信息，当前无法处理，请稍后再试。",
		"Adding students needs the assisted planner, which is unavailable right now. Please try again later.",
	},
	msgConfirm: {
		"即将执行以下操作：\n%s\n确认执行吗？（是/否）",
		"About to run:\n%s\nProceed? (yes/no)",
	},
	msgCancelled:        {"已取消，未做任何修改。", "Cancelled, nothing was changed."},
	msgCancelledUnclear: {"未收到明确确认，操作已取消。如需执行请重新发起。", "No clear confirmation received, so the operation was cancelled. Ask again to retry."},
	msgRejected:         {"抱歉，无法安全地执行这个请求，请换个说法。", "Sorry, I can't run that request safely. Please rephrase."},
	msgLookupFailed:     {"查询学生记录时出错，请稍后再试。", "Looking up the record failed, please try again later."},
	msgExists:           {"有的，找到了名为“%s”的学生。", "Yes, there is a student named \"%s\"."},
	msgNotExists:        {"没有，找不到名为“%s”的学生。", "No, there is no student named \"%s\"."},
	msgVerdictYes:       {"是的，%s的%s是“%s”。", "Yes, %s's %s is \"%s\"."},
	msgVerdictNo:        {"不是，%s的记录与“%s”不符。", "No, %s's record does not match \"%s\"."},
	msgNoRecord:         {"没有找到名为“%s”的学生，无法判断。", "There is no student named \"%s\", so I can't tell."},
	msgStatisticsFor:    {"📊 “%s” 的统计结果：", "statistics for %s:"},
	msgResultsFor:       {"🔍 “%s” 的查询结果：", "query results for %s:"},
	msgExecutedFor:      {"✅ 已执行 “%s”：", "executed %s:"},
}

// phrase returns the message template in the user's language.
func phrase(key msgKey, zh bool) string {
	p := phrasebook[key]
	if zh {
		return p[0]
	}
	return p[1]
}
