package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// swagger:model Step
type Step struct {
	ID          int        `json:"id" validate:"required"`
	ProjectID   int        `json:"project_id"`
	OrderIndex  int        `json:"order_index"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	CodeSnippet string     `json:"code_snippet,omitempty"`
	FullCode    string     `json:"full_code,omitempty"`
	IsReleased  bool       `json:"is_released"`
	Questions   []Question `json:"questions" validate:"dive"`
}

type CodeSnippet struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Explanation string `json:"explanation,omitempty"`
}

// CodeSnippets decodes the serialized snippet list. Older steps store plain
// code instead of a list; that text becomes a single untitled snippet.
func (s Step) CodeSnippets() []CodeSnippet {
	raw := strings.TrimSpace(s.CodeSnippet)
	if raw == "" {
		return nil
	}
	var list []CodeSnippet
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	return []CodeSnippet{{Code: s.CodeSnippet}}
}

func (s Step) HasQuestions() bool {
	return len(s.Questions) > 0
}

func (s Step) Question(id int) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// swagger:model Question
type Question struct {
	ID      int               `json:"id" validate:"required"`
	StepID  int               `json:"step_id"`
	Prompt  string            `json:"prompt"`
	Options map[string]string `json:"options"`
	Points  int               `json:"points"`
}

type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// AvailableOptions drops empty option slots and orders the rest by key.
func (q Question) AvailableOptions() []Option {
	out := make([]Option, 0, len(q.Options))
	for k, v := range q.Options {
		if v == "" {
			continue
		}
		out = append(out, Option{Key: k, Text: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (q Question) HasOption(key string) bool {
	return q.Options[key] != ""
}
