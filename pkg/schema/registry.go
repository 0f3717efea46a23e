package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TableName is the only table the assistant plans against.
const TableName = "students"

// ColumnType is the coarse storage class of a column.
type ColumnType string

const (
	ColumnInteger ColumnType = "integer"
	ColumnText    ColumnType = "text"
)

// Column describes one column of the students table.
type Column struct {
	Name        string
	Type        ColumnType
	Label       string // Chinese display name
	Description string
}

// Columns is the fixed column list of the students table.
var Columns = []Column{
	{Name: "id", Label: "编号", Type: ColumnInteger, Description: "surrogate primary key"},
	{Name: "student_id", Label: "学号", Type: ColumnText, Description: "student number, e.g. 2023001"},
	{Name: "name", Label: "姓名", Type: ColumnText, Description: "full name"},
	{Name: "class_name", Label: "班级", Type: ColumnText, Description: "class, e.g. 软件1班"},
	{Name: "college", Label: "学院", Type: ColumnText, Description: "college, e.g. 计算机学院"},
	{Name: "major", Label: "专业", Type: ColumnText, Description: "major, e.g. 软件工程"},
	{Name: "grade", Label: "年级", Type: ColumnInteger, Description: "enrolment year, e.g. 2023"},
	{Name: "gender", Label: "性别", Type: ColumnText, Description: "gender, 男 or 女"},
	{Name: "phone", Label: "手机号", Type: ColumnText, Description: "mobile phone number"},
}

// Keywords are the SQL words a generated statement may contain besides identifiers.
var Keywords = []string{
	"select", "from", "where", "count", "distinct", "as",
	"sum", "avg", "min", "max",
	"insert", "into", "values", "update", "set", "delete",
	"and", "or", "like", "in", "group", "by", "order", "limit", "asc", "desc", "null",
	"not", "is", "between", "having", "offset",
}

// ColumnByName returns the column with the given name.
func ColumnByName(name string) (Column, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IsColumn reports whether name is a column of the students table.
func IsColumn(name string) bool {
	_, ok := ColumnByName(name)
	return ok
}

// Dimension is a statistical dimension the assistant can count by.
type Dimension string

const (
	DimensionCollege Dimension = "college"
	DimensionMajor   Dimension = "major"
	DimensionClass   Dimension = "class"
	DimensionGrade   Dimension = "grade"
	DimensionGender  Dimension = "gender"
)

// Dimensions in the order they are offered to the user.
var Dimensions = []Dimension{DimensionCollege, DimensionMajor, DimensionClass, DimensionGrade, DimensionGender}

var dimensionColumns = map[Dimension]string{
	DimensionCollege: "college",
	DimensionMajor:   "major",
	DimensionClass:   "class_name",
	DimensionGrade:   "grade",
	DimensionGender:  "gender",
}

// dimension keywords, matched case-insensitively
var dimensionKeywords = map[Dimension][]string{
	DimensionCollege: {"学院", "college"},
	DimensionMajor:   {"专业", "major"},
	DimensionClass:   {"班级", "班", "class"},
	DimensionGrade:   {"年级", "grade", "year"},
	DimensionGender:  {"性别", "男女", "gender", "sex"},
}

var dimensionLabels = map[Dimension][2]string{
	DimensionCollege: {"学院", "college"},
	DimensionMajor:   {"专业", "major"},
	DimensionClass:   {"班级", "class"},
	DimensionGrade:   {"年级", "grade"},
	DimensionGender:  {"性别", "gender"},
}

// Column returns the column a dimension is stored in.
func (d Dimension) Column() string { return dimensionColumns[d] }

// Keywords returns the words that name the dimension in user text.
func (d Dimension) Keywords() []string { return dimensionKeywords[d] }

// Label returns a display label, Chinese when zh is set.
func (d Dimension) Label(zh bool) string {
	if zh {
		return dimensionLabels[d][0]
	}
	return dimensionLabels[d][1]
}

// DictionarySource supplies the distinct values of a column.
type DictionarySource interface {
	DistinctValues(ctx context.Context, column string) ([]string, error)
}

// Dictionaries holds the known values used for slot matching. A zero value is usable and empty.
type Dictionaries struct {
	Names    []string
	Colleges []string
	Majors   []string
	Classes  []string
	Grades   []string
	Genders  []string
}

// ForDimension returns the dictionary backing a dimension.
func (d *Dictionaries) ForDimension(dim Dimension) []string {
	switch dim {
	case DimensionCollege:
		return d.Colleges
	case DimensionMajor:
		return d.Majors
	case DimensionClass:
		return d.Classes
	case DimensionGrade:
		return d.Grades
	case DimensionGender:
		return d.Genders
	}
	return nil
}

// Registry is a read-only view of the schema plus live value dictionaries.
type Registry struct {
	source DictionarySource

	allowOnce sync.Once
	allow     map[string]struct{}
}

func NewRegistry(source DictionarySource) *Registry {
	return &Registry{source: source}
}

// Allowlist returns every lower-cased word a statement may contain outside literals.
func (r *Registry) Allowlist() map[string]struct{} {
	r.allowOnce.Do(func() {
		r.allow = make(map[string]struct{}, len(Columns)+len(Keywords)+1)
		r.allow[TableName] = struct{}{}
		for _, c := range Columns {
			r.allow[c.Name] = struct{}{}
		}
		for _, k := range Keywords {
			r.allow[k] = struct{}{}
		}
	})
	return r.allow
}

// Dictionaries fetches the current distinct values for every slot category.
// Values are re-read on every call since the underlying rows change.
func (r *Registry) Dictionaries(ctx context.Context) (*Dictionaries, error) {
	dicts := &Dictionaries{}
	if r.source == nil {
		return dicts, nil
	}

	targets := []struct {
		column string
		dst    *[]string
	}{
		{"name", &dicts.Names},
		{"college", &dicts.Colleges},
		{"major", &dicts.Majors},
		{"class_name", &dicts.Classes},
		{"grade", &dicts.Grades},
		{"gender", &dicts.Genders},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			values, err := r.source.DistinctValues(gctx, t.column)
			if err != nil {
				return fmt.Errorf("distinct values of %s: %w", t.column, err)
			}
			*t.dst = literalSafe(values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dicts, nil
}

// literalSafe drops values holding a backslash. Such a value cannot be quoted
// the same way for every driver and the validator would reject it anyway.
func literalSafe(values []string) []string {
	var kept []string
	for _, v := range values {
		if strings.ContainsRune(v, '\\') {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// Describe renders the table definition for a language-model prompt.
func (r *Registry) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Table %s:\n", TableName)
	for _, c := range Columns {
		fmt.Fprintf(&sb, "  - %s (%s): %s\n", c.Name, c.Type, c.Description)
	}
	return sb.String()
}
