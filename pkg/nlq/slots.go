package nlq

import (
	"sort"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// Slot is a named entity category.
type Slot string

const (
	SlotName    Slot = "name"
	SlotCollege Slot = "college"
	SlotMajor   Slot = "major"
	SlotClass   Slot = "class"
	SlotGrade   Slot = "grade"
	SlotGender  Slot = "gender"
)

// filterSlots are the slots that can filter a count, in the order they are applied.
var filterSlots = []Slot{SlotCollege, SlotMajor, SlotClass, SlotGrade, SlotGender}

// Column returns the students column a slot is stored in.
func (s Slot) Column() string {
	if s == SlotName {
		return "name"
	}
	return s.Dimension().Column()
}

// Dimension maps a filter slot to its statistical dimension.
func (s Slot) Dimension() schema.Dimension {
	switch s {
	case SlotCollege:
		return schema.DimensionCollege
	case SlotMajor:
		return schema.DimensionMajor
	case SlotClass:
		return schema.DimensionClass
	case SlotGrade:
		return schema.DimensionGrade
	case SlotGender:
		return schema.DimensionGender
	}
	return ""
}

// SlotSet maps slot categories to dictionary values found in the text.
// Unmatched categories are absent.
type SlotSet map[Slot]string

// Get returns the matched value of a slot.
func (s SlotSet) Get(slot Slot) (string, bool) {
	v, ok := s[slot]
	return v, ok
}

func dictionaryFor(slot Slot, dicts *schema.Dictionaries) []string {
	if dicts == nil {
		return nil
	}
	if slot == SlotName {
		return dicts.Names
	}
	return dicts.ForDimension(slot.Dimension())
}

// ExtractSlots finds, per category, the longest dictionary entry contained in text.
// Matching ignores case and full-width forms; the returned values are the dictionary
// entries themselves, so they can be trusted inside statements.
func ExtractSlots(text string, dicts *schema.Dictionaries) SlotSet {
	slots := SlotSet{}
	lower := strings.ToLower(normalize(text))
	for _, slot := range append([]Slot{SlotName}, filterSlots...) {
		if v, ok := longestMatch(lower, dictionaryFor(slot, dicts)); ok {
			slots[slot] = v
		}
	}
	return slots
}

// longestMatch prefers longer entries so that "计算机科学与技术" wins over "计算机".
// Entries of equal length keep dictionary order.
func longestMatch(lower string, entries []string) (string, bool) {
	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e) != "" {
			candidates = append(candidates, e)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return runeLen(candidates[i]) > runeLen(candidates[j])
	})
	for _, c := range candidates {
		if strings.Contains(lower, strings.ToLower(normalize(c))) {
			return c, true
		}
	}
	return "", false
}
