package nlq

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// maxListedValues bounds the dictionary values shown in a clarification.
const maxListedValues = 5

type dimensionHit struct {
	dim schema.Dimension
	pos int
}

// dimensionsIn returns the dimensions named in the text, earliest mention first.
func dimensionsIn(t *turn) []schema.Dimension {
	var hits []dimensionHit
	for _, d := range schema.Dimensions {
		best := -1
		for _, kw := range d.Keywords() {
			if i := indexTerm(t.lower, kw); i >= 0 && (best < 0 || i < best) {
				best = i
			}
		}
		if best >= 0 {
			hits = append(hits, dimensionHit{d, best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	dims := make([]schema.Dimension, len(hits))
	for i, h := range hits {
		dims[i] = h.dim
	}
	return dims
}

// equality renders column = value, unquoted for integer columns holding digits.
func equality(column, value string) string {
	if c, ok := schema.ColumnByName(column); ok && c.Type == schema.ColumnInteger && digitsOnly.MatchString(value) {
		return fmt.Sprintf("%s = %s", column, value)
	}
	return fmt.Sprintf("%s = %s", column, quoteLiteral(value))
}

// filterConditions renders the matched filter slots, skipping the excluded dimension.
func filterConditions(slots SlotSet, exclude schema.Dimension) []string {
	var conds []string
	for _, s := range filterSlots {
		if s.Dimension() == exclude {
			continue
		}
		if v, ok := slots.Get(s); ok {
			conds = append(conds, equality(s.Column(), v))
		}
	}
	return conds
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func countStatement(conds []string) string {
	return "SELECT COUNT(*) AS count FROM " + schema.TableName + whereClause(conds)
}

func groupStatement(dim schema.Dimension, conds []string) string {
	col := dim.Column()
	return fmt.Sprintf("SELECT %s, COUNT(*) AS count FROM %s%s GROUP BY %s", col, schema.TableName, whereClause(conds), col)
}

func (p *RulePlanner) planCount(_ context.Context, t *turn) Plan {
	dims := dimensionsIn(t)

	if len(dims) > 0 && t.has(aggregateTerms) {
		return &SQLPlan{Statement: groupStatement(dims[0], filterConditions(t.slots, dims[0])), Kind: KindSelect}
	}

	if conds := filterConditions(t.slots, ""); len(conds) > 0 {
		return &SQLPlan{Statement: countStatement(conds), Kind: KindCount}
	}

	for _, d := range dims {
		if d == schema.DimensionClass {
			if plan := p.planClassFragment(t); plan != nil {
				return plan
			}
		}
	}

	if len(dims) > 0 {
		return &AskPlan{
			Message: fmt.Sprintf(t.say(msgAskDimensionValue), dims[0].Label(t.zh), listValues(t.dicts.ForDimension(dims[0]), t.zh)),
			Pending: AwaitingCountDimension{},
		}
	}

	return &AskPlan{Message: dimensionMenu(t), Pending: AwaitingCountDimension{}}
}

// planClassFragment resolves a partial class name such as "1班" against the class
// dictionary. It returns nil when the text holds no fragment beyond the keyword.
func (p *RulePlanner) planClassFragment(t *turn) Plan {
	noise := append(append([]string{}, countTriggers...), fillerTerms...)
	noise = append(noise, "学院", "专业", "年级", "一共", "总共", "共", "有", "人", "college", "major", "grade")
	fragment := stripTerms(t.text, noise)
	if stripTerms(fragment, schema.DimensionClass.Keywords()) == "" {
		return nil
	}

	needle := strings.ToLower(fragment)
	var candidates []string
	for _, c := range t.dicts.Classes {
		if c != "" && strings.Contains(strings.ToLower(normalize(c)), needle) {
			candidates = append(candidates, c)
		}
	}

	switch len(candidates) {
	case 0:
		return &ChatPlan{Message: fmt.Sprintf(t.say(msgNoClassMatch), fragment)}
	case 1:
		return &SQLPlan{Statement: countStatement([]string{equality("class_name", candidates[0])}), Kind: KindCount}
	default:
		sep := ", "
		if t.zh {
			sep = "、"
		}
		return &AskPlan{
			Message: fmt.Sprintf(t.say(msgAskClassCandidates), strings.Join(candidates, sep)),
			Pending: AwaitingCountDimension{},
		}
	}
}

func listValues(values []string, zh bool) string {
	sep, more := ", ", ", ..."
	if zh {
		sep, more = "、", "等"
	}
	shown := values
	if len(shown) > maxListedValues {
		shown = shown[:maxListedValues]
	}
	out := strings.Join(shown, sep)
	if len(values) > maxListedValues {
		out += more
	}
	return out
}

func dimensionMenu(t *turn) string {
	var lines []string
	for _, d := range schema.Dimensions {
		line := "- " + d.Label(t.zh)
		if values := t.dicts.ForDimension(d); len(values) > 0 {
			if t.zh {
				line += "：" + listValues(values, true)
			} else {
				line += ": " + listValues(values, false)
			}
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf(t.say(msgAskDimension), strings.Join(lines, "\n"))
}
