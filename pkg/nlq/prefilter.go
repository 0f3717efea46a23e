package nlq

var (
	greetingTerms = []string{
		"你好", "您好", "嗨", "哈喽", "早上好", "晚上好", "下午好",
		"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
	}
	thanksTerms = []string{
		"谢谢", "多谢", "感谢", "谢啦", "辛苦了",
		"thanks", "thank you", "thx", "cheers",
	}
	capabilityTerms = []string{
		"你能做什么", "你可以做什么", "你会什么", "你是谁", "怎么用", "如何使用", "帮助", "功能",
		"what can you do", "who are you", "how do i use", "how to use", "help",
	}
	// politeness words that may surround a canned utterance
	politeTerms = []string{"啊", "呀", "呢", "吗", "哦", "你", "您", "了", "请问", "there", "you", "so", "much", "very", "a", "lot"}
)

// prefilter answers purely conversational turns without a planner. It returns nil
// when the text carries any data trigger or anything besides the canned phrasing.
func prefilter(t *turn) *ChatPlan {
	for _, triggers := range allTriggers() {
		if t.has(triggers) {
			return nil
		}
	}
	if len(t.slots) > 0 {
		return nil
	}

	var key msgKey
	switch {
	case t.has(capabilityTerms):
		key = msgHelp
	case t.has(thanksTerms):
		key = msgThanks
	case t.has(greetingTerms):
		key = msgGreeting
	default:
		return nil
	}

	noise := append(append(append(append([]string{}, capabilityTerms...), thanksTerms...), greetingTerms...), politeTerms...)
	noise = append(noise, interrogatives...)
	if stripTerms(t.text, noise) != "" {
		return nil
	}
	return &ChatPlan{Message: t.say(key)}
}
