package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

func TestExtractSlots(t *testing.T) {
	dicts := &schema.Dictionaries{
		Names:    []string{"张三", "张三丰", "Zhang San"},
		Colleges: []string{"计算机学院", "信息工程学院", "Computer College"},
		Majors:   []string{"软件工程", "计算机科学"},
		Classes:  []string{"软件1班", "软件11班"},
		Grades:   []string{"2022", "2023"},
		Genders:  []string{"男", "女", "male", "female"},
	}

	tests := []struct {
		name string
		text string
		want SlotSet
	}{
		{"name and college", "查询计算机学院的张三", SlotSet{SlotName: "张三", SlotCollege: "计算机学院"}},
		{"longest name wins", "张三丰是男生吗", SlotSet{SlotName: "张三丰", SlotGender: "男"}},
		{"longest class wins", "统计软件11班人数", SlotSet{SlotClass: "软件11班"}},
		{"grade", "统计2023级人数", SlotSet{SlotGrade: "2023"}},
		{"case insensitive", "count computer college population", SlotSet{SlotCollege: "Computer College"}},
		{"female beats male", "is Zhang San female?", SlotSet{SlotName: "Zhang San", SlotGender: "female"}},
		{"full width input", "统计２０２２级人数", SlotSet{SlotGrade: "2022"}},
		{"nothing", "hello there", SlotSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSlots(tt.text, dicts))
		})
	}
}

func TestExtractSlots_IgnoresEmptyEntries(t *testing.T) {
	dicts := &schema.Dictionaries{Names: []string{"", "  ", "李四"}}
	assert.Equal(t, SlotSet{}, ExtractSlots("统计人数", dicts))
	assert.Equal(t, SlotSet{SlotName: "李四"}, ExtractSlots("查询李四", dicts))
}

func TestExtractSlots_NilDictionaries(t *testing.T) {
	assert.Equal(t, SlotSet{}, ExtractSlots("查询张三信息", nil))
}
