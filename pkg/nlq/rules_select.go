package nlq

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// listLimit caps the rows of a select that has no single subject.
const listLimit = 50

func (p *RulePlanner) planSelect(_ context.Context, t *turn) Plan {
	if name, ok := t.slots.Get(SlotName); ok {
		return &SQLPlan{Statement: selectByName(name), Kind: KindSelect}
	}

	if conds := filterConditions(t.slots, ""); len(conds) > 0 {
		return &SQLPlan{Statement: "SELECT * FROM " + schema.TableName + whereClause(conds), Kind: KindSelect}
	}

	noise := append(append([]string{}, selectTriggers...), fillerTerms...)
	subject := stripTerms(t.text, noise)
	if subject == "" {
		return &AskPlan{Message: t.say(msgAskSubject), Pending: AwaitingSelectSubject{}}
	}
	if isGenericSubject(subject) {
		return &SQLPlan{Statement: fmt.Sprintf("SELECT * FROM %s LIMIT %d", schema.TableName, listLimit), Kind: KindSelect}
	}
	if mentionsDimension(subject) {
		return &AskPlan{Message: t.say(msgAskSubject), Pending: AwaitingSelectSubject{}}
	}
	if !safeSubject.MatchString(subject) {
		return &ChatPlan{Message: t.say(msgBadSubject)}
	}
	return &SQLPlan{Statement: selectByName(subject), Kind: KindSelect}
}

func selectByName(name string) string {
	return "SELECT * FROM " + schema.TableName + " WHERE " + equality("name", name)
}

func isGenericSubject(subject string) bool {
	lower := strings.ToLower(subject)
	for _, g := range genericSubjectTerms {
		if lower == g {
			return true
		}
	}
	return false
}

// mentionsDimension reports whether a leftover subject still names a dimension or
// a grouping, in which case it is not a student name.
func mentionsDimension(subject string) bool {
	lower := strings.ToLower(subject)
	if containsAnyTerm(lower, aggregateTerms) {
		return true
	}
	for _, d := range schema.Dimensions {
		if containsAnyTerm(lower, d.Keywords()) {
			return true
		}
	}
	return false
}

// booleanQuery is a yes/no question about one student.
type booleanQuery struct {
	subject   string
	claim     string // empty for existence questions
	existence bool
	trusted   bool // subject came from the name dictionary
	// filters replace the subject when existence is asked of a group
	filters []string
}

var (
	// is Zhang San in Computer College?
	enIsPrepositional = regexp.MustCompile(`(?i)^is\s+(.+?)\s+(?:a|an|in|from|of|studying|majoring in)\s+(.+?)[\s?]*$`)
	// is Zhang San male?
	enIsTrailing = regexp.MustCompile(`(?i)^is\s+(.+)\s+(\S+?)[\s?]*$`)
	// Zhang San is male?
	enSubjectIs = regexp.MustCompile(`(?i)^(.+?)\s+is\s+(?:a\s+|an\s+|in\s+|from\s+)?(.+?)[\s?]*$`)
)

// claimNoise is stripped from both sides of a Chinese identity question.
var claimNoise = []string{"吗", "么", "嘛", "?", "呢", "的", "学生", "同学", "请问", "请"}

// parseBooleanCheck recognises presence and identity questions. It returns nil when
// the text is not a yes/no question or asks for something a verdict cannot answer.
func parseBooleanCheck(t *turn) *booleanQuery {
	if !t.has(interrogatives) || t.has(countTriggers) {
		return nil
	}
	name, named := t.slots.Get(SlotName)

	if t.has(existenceTerms) {
		if named {
			return &booleanQuery{subject: name, existence: true, trusted: true}
		}
		if conds := filterConditions(t.slots, ""); len(conds) > 0 {
			return &booleanQuery{existence: true, filters: conds}
		}
		noise := append(append(append([]string{}, existenceTerms...), interrogatives...), fillerTerms...)
		noise = append(noise, "呢", "存在", "有")
		subject := stripTerms(t.text, noise)
		if subject == "" || containsAnyTerm(strings.ToLower(subject), whWords) || mentionsDimension(subject) {
			return nil
		}
		return &booleanQuery{subject: subject, existence: true}
	}

	var q *booleanQuery
	if t.zh {
		q = parseChineseIdentity(t.text, name, named)
	} else {
		q = parseEnglishIdentity(t.text, name, named)
	}
	if q == nil || q.subject == "" || q.claim == "" {
		return nil
	}
	if containsAnyTerm(strings.ToLower(q.claim), whWords) || containsAnyTerm(strings.ToLower(q.subject), whWords) {
		return nil
	}
	return q
}

func parseChineseIdentity(text, name string, named bool) *booleanQuery {
	text = strings.ReplaceAll(text, "是不是", "是")
	text = strings.ReplaceAll(text, "是否", "是")
	idx := strings.Index(text, "是")
	if idx < 0 {
		return nil
	}
	before, after := text[:idx], text[idx+len("是"):]
	claim := stripTerms(after, claimNoise)
	if named {
		if !strings.Contains(strings.ToLower(before), strings.ToLower(name)) {
			return nil
		}
		return &booleanQuery{subject: name, claim: claim, trusted: true}
	}
	return &booleanQuery{subject: stripTerms(before, claimNoise), claim: claim}
}

func parseEnglishIdentity(text, name string, named bool) *booleanQuery {
	lower := strings.ToLower(text)
	if named {
		if !containsTerm(lower, "is") {
			return nil
		}
		noise := append(append([]string{strings.ToLower(name)}, interrogatives...), fillerTerms...)
		noise = append(noise, "studying", "majoring")
		return &booleanQuery{subject: name, claim: stripTerms(text, noise), trusted: true}
	}
	for _, re := range []*regexp.Regexp{enIsPrepositional, enIsTrailing, enSubjectIs} {
		if m := re.FindStringSubmatch(text); m != nil {
			return &booleanQuery{subject: strings.TrimSpace(m[1]), claim: strings.TrimSpace(m[2])}
		}
	}
	return nil
}

func (p *RulePlanner) planBooleanCheck(ctx context.Context, t *turn) Plan {
	q := parseBooleanCheck(t)
	if q == nil {
		return &ChatPlan{Message: t.say(msgHelp)}
	}
	if len(q.filters) > 0 {
		return &SQLPlan{Statement: countStatement(q.filters), Kind: KindCount}
	}
	if !q.trusted && !safeSubject.MatchString(q.subject) {
		return &ChatPlan{Message: t.say(msgBadSubject)}
	}
	return p.verdict(ctx, q, t.zh)
}

// CheckClaim answers a yes/no question about a student: existence when claim is
// empty, otherwise whether any field of the student's record matches the claim.
func (p *RulePlanner) CheckClaim(ctx context.Context, text, subject, claim string) Plan {
	zh := isChinese(text)
	subject = strings.TrimSpace(normalize(subject))
	if subject == "" || !safeSubject.MatchString(subject) {
		return &ChatPlan{Message: phrase(msgBadSubject, zh)}
	}
	q := &booleanQuery{subject: subject, claim: strings.TrimSpace(normalize(claim))}
	q.existence = q.claim == ""
	return p.verdict(ctx, q, zh)
}

func (p *RulePlanner) verdict(ctx context.Context, q *booleanQuery, zh bool) Plan {
	if p.entities == nil {
		return &ChatPlan{Message: phrase(msgLookupFailed, zh)}
	}
	rows, err := p.entities.GetByKey(ctx, q.subject)
	if err != nil {
		log.Printf("RulePlanner -> verdict -> GetByKey(%q) failed: %v", q.subject, err)
		return &ChatPlan{Message: phrase(msgLookupFailed, zh)}
	}

	if q.existence {
		if len(rows) > 0 {
			return &ChatPlan{Message: fmt.Sprintf(phrase(msgExists, zh), q.subject)}
		}
		return &ChatPlan{Message: fmt.Sprintf(phrase(msgNotExists, zh), q.subject)}
	}

	if len(rows) == 0 {
		return &ChatPlan{Message: fmt.Sprintf(phrase(msgNoRecord, zh), q.subject)}
	}
	for _, row := range rows {
		if col, value, ok := matchClaim(row, q.claim); ok {
			label := col.Name
			if zh {
				label = col.Label
			} else {
				label = strings.ReplaceAll(label, "_", " ")
			}
			return &ChatPlan{Message: fmt.Sprintf(phrase(msgVerdictYes, zh), q.subject, label, value)}
		}
	}
	return &ChatPlan{Message: fmt.Sprintf(phrase(msgVerdictNo, zh), q.subject, q.claim)}
}

// matchClaim compares the claim with every column value of a row using containment
// in either direction. The surrogate id is skipped so that "1" never matches it.
func matchClaim(row map[string]interface{}, claim string) (schema.Column, string, bool) {
	lc := strings.ToLower(claim)
	if lc == "" {
		return schema.Column{}, "", false
	}
	for _, col := range schema.Columns {
		if col.Name == "id" {
			continue
		}
		value := stringify(row[col.Name])
		if value == "" {
			continue
		}
		lv := strings.ToLower(value)
		if strings.Contains(lc, lv) || strings.Contains(lv, lc) {
			return col, value, true
		}
	}
	return schema.Column{}, "", false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(val))
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
