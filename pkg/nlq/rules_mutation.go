package nlq

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

var updatePatterns = []*regexp.Regexp{
	// 把张三的手机号改为13800000000
	regexp.MustCompile(`^(?:请)?(?:帮我)?(?:把|将)(.+?)的(.+?)(?:修改|更新|更改|改)(?:为|成)(.+)$`),
	// 修改张三的手机号为13800000000
	regexp.MustCompile(`^(?:请)?(?:帮我)?(?:修改|更新|更改)(.+?)的(.+?)(?:为|成|到)(.+)$`),
	// modify Zhang San's phone to 13800000000
	regexp.MustCompile(`(?i)^(?:please\s+)?(?:modify|update|change|set)\s+(.+?)(?:'s|’s)\s+(.+?)\s+(?:to|as)\s+(.+)$`),
}

// update the phone of Zhang San to 13800000000
var updateFieldOfPattern = regexp.MustCompile(`(?i)^(?:please\s+)?(?:modify|update|change|set)\s+(?:the\s+)?(.+?)\s+of\s+(.+?)\s+(?:to|as)\s+(.+)$`)

// fieldSynonyms maps spoken field names to updatable columns.
var fieldSynonyms = map[string]string{
	"手机号": "phone", "手机号码": "phone", "手机": "phone", "电话": "phone", "电话号码": "phone", "联系方式": "phone",
	"phone": "phone", "mobile": "phone", "phone number": "phone", "telephone": "phone",
	"班级": "class_name", "班": "class_name", "class": "class_name",
	"专业": "major", "major": "major",
	"学院": "college", "college": "college",
	"年级": "grade", "grade": "grade", "year": "grade",
	"性别": "gender", "gender": "gender", "sex": "gender",
}

var valueTrailer = "。.!！?？ "

type updateRequest struct {
	subject, field, value string
}

func parseUpdate(text string) *updateRequest {
	for _, re := range updatePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return &updateRequest{subject: m[1], field: m[2], value: m[3]}
		}
	}
	if m := updateFieldOfPattern.FindStringSubmatch(text); m != nil {
		return &updateRequest{subject: m[2], field: m[1], value: m[3]}
	}
	return nil
}

func (p *RulePlanner) planUpdate(_ context.Context, t *turn) Plan {
	req := parseUpdate(t.text)
	if req == nil {
		return &ChatPlan{Message: t.say(msgUpdateUsage)}
	}

	column, ok := fieldSynonyms[strings.ToLower(strings.TrimSpace(req.field))]
	if !ok {
		return &ChatPlan{Message: t.say(msgUpdateUsage)}
	}

	subject := strings.TrimSpace(req.subject)
	name, known := lookupName(t.dicts, subject)
	if !known {
		return &ChatPlan{Message: fmt.Sprintf(t.say(msgUnknownStudent), subject)}
	}

	value := strings.TrimSpace(strings.TrimRight(strings.Trim(req.value, "\"'“”‘’"), valueTrailer))
	value = strings.Trim(value, "\"'“”‘’")
	if !validFieldValue(column, value, t.dicts) {
		label := req.field
		return &ChatPlan{Message: fmt.Sprintf(t.say(msgUpdateBadValue), value, label)}
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s", schema.TableName, equality(column, value), equality("name", name))
	return &SQLPlan{Statement: stmt, Kind: KindUpdate}
}

func validFieldValue(column, value string, dicts *schema.Dictionaries) bool {
	switch column {
	case "phone":
		return phoneValue.MatchString(value)
	case "grade":
		return gradeValue.MatchString(value)
	case "gender":
		allowed := dicts.Genders
		if len(allowed) == 0 {
			allowed = []string{"男", "女", "male", "female"}
		}
		for _, g := range allowed {
			if strings.EqualFold(g, value) {
				return true
			}
		}
		return false
	}
	return safeValue.MatchString(value)
}

// lookupName returns the dictionary spelling of a student name.
func lookupName(dicts *schema.Dictionaries, subject string) (string, bool) {
	needle := strings.ToLower(normalize(subject))
	if needle == "" {
		return "", false
	}
	for _, n := range dicts.Names {
		if strings.ToLower(normalize(n)) == needle {
			return n, true
		}
	}
	return "", false
}

// massDeleteTerms anywhere in a delete subject mean the user is not naming one student.
var massDeleteTerms = []string{"所有", "全部", "全体", "all", "everyone", "everybody", "every"}

func (p *RulePlanner) planDelete(_ context.Context, t *turn) Plan {
	verbless := stripTerms(t.text, append([]string{"请", "帮我", "把", "将", "吧", "please"}, deleteTriggers...))
	if verbless == "" {
		return &ChatPlan{Message: t.say(msgDeleteUsage)}
	}

	noise := append(append([]string{}, deleteTriggers...), fillerTerms...)
	noise = append(noise, "把", "将", "吧", "信息", "资料", "info", "information", "from", "table")
	subject := stripTerms(t.text, noise)
	if subject == "" || isGenericSubject(subject) || containsAnyTerm(strings.ToLower(subject), massDeleteTerms) || runeLen(subject) < 2 {
		return &ChatPlan{Message: t.say(msgDeleteGeneric)}
	}

	name, known := lookupName(t.dicts, subject)
	if !known {
		return &ChatPlan{Message: fmt.Sprintf(t.say(msgUnknownStudent), subject)}
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", schema.TableName, equality("name", name))
	return &SQLPlan{Statement: stmt, Kind: KindDelete}
}
