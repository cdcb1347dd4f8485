package models

import (
	"fmt"
	"time"
)

type Method string

const (
	MethodExtractive Method = "extractive"
	MethodAI         Method = "ai-enhanced"
)

// Summary is produced exactly once per pipeline run.
type Summary struct {
	Body      string   `json:"body" msgpack:"body"`
	KeyPoints []string `json:"key_points" msgpack:"key_points"`
	Method    Method   `json:"method" msgpack:"method"`
	// Model names the language model behind an ai-enhanced summary.
	Model string `json:"model,omitempty" msgpack:"model,omitempty"`
}

// Label is the human-readable summary type printed in the report.
func (s Summary) Label() string {
	if s.Method == MethodAI {
		model := s.Model
		if model == "" {
			model = "AI"
		}
		return fmt.Sprintf("AI增强总结（%s）", model)
	}
	return "快速提取总结（无API依赖）"
}

// Report is a finished Markdown document waiting to be downloaded.
type Report struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	Markdown  string    `json:"markdown"`
	Summary   Summary   `json:"summary"`
	Video     VideoInfo `json:"video"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the report has outlived ttl.
func (r *Report) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(r.CreatedAt) > ttl
}
