package nlq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hq040506/DL-student-assistant/pkg/llm"
	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// fakeStudents is an in-memory entity repository.
type fakeStudents struct {
	rows       []map[string]interface{}
	getErr     error
	panicOnGet bool
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{rows: []map[string]interface{}{
		{"id": 1, "student_id": "2023001", "name": "张三", "class_name": "软件1班", "college": "计算机学院", "major": "软件工程", "grade": 2023, "gender": "男", "phone": "13800000001"},
		{"id": 2, "student_id": "2023002", "name": "李四", "class_name": "软件2班", "college": "计算机学院", "major": "软件工程", "grade": 2023, "gender": "女", "phone": "13800000002"},
		{"id": 3, "student_id": "2022001", "name": "王五", "class_name": "网络1班", "college": "信息工程学院", "major": "网络工程", "grade": 2022, "gender": "男", "phone": "13800000003"},
		{"id": 4, "student_id": "ZS001", "name": "Zhang San", "class_name": "Class A", "college": "Computer College", "major": "Software Engineering", "grade": 2023, "gender": "male", "phone": "15500000004"},
	}}
}

func (f *fakeStudents) DistinctValues(_ context.Context, column string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range f.rows {
		v := fmt.Sprint(r[column])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStudents) GetByKey(_ context.Context, name string) ([]map[string]interface{}, error) {
	if f.panicOnGet {
		panic("repository exploded")
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []map[string]interface{}
	for _, r := range f.rows {
		if strings.EqualFold(fmt.Sprint(r["name"]), name) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStudents) dictionaries() *schema.Dictionaries {
	d, _ := schema.NewRegistry(f).Dictionaries(context.Background())
	return d
}

// fakeClient is a scripted completion service.
type fakeClient struct {
	mu       sync.Mutex
	complete func(ctx context.Context, prompt llm.Prompt) (*llm.Completion, error)
	calls    int
	prompts  []llm.Prompt
}

func replyWith(text string) *fakeClient {
	return &fakeClient{complete: func(context.Context, llm.Prompt) (*llm.Completion, error) {
		return &llm.Completion{Status: llm.StatusOK, Text: text}, nil
	}}
}

func failWith(err error) *fakeClient {
	return &fakeClient{complete: func(context.Context, llm.Prompt) (*llm.Completion, error) {
		return nil, err
	}}
}

func (c *fakeClient) Complete(ctx context.Context, prompt llm.Prompt) (*llm.Completion, error) {
	c.mu.Lock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.complete(ctx, prompt)
}

func (c *fakeClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "fake", Provider: "fake"}
}

func (c *fakeClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var errTransport = errors.New("connection refused")

// newTestAssistant builds an assistant over the fake repository. A nil client
// means rules only.
func newTestAssistant(repo *fakeStudents, client llm.Client, cfg Config) *Assistant {
	return NewAssistant(schema.NewRegistry(repo), repo, client, cfg)
}
