package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		key       string
		wantModel string
		wantErr   bool
	}{
		{"default provider", "", "sk-test", defaultOpenAIModel, false},
		{"openai", "openai", "sk-test", defaultOpenAIModel, false},
		{"gemini", "Gemini", "g-test", defaultGeminiModel, false},
		{"missing key", "openai", "  ", "", true},
		{"unknown provider", "llama", "k", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Config{Provider: tt.provider}, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Model() != tt.wantModel {
				t.Errorf("expected model %q, got %q", tt.wantModel, c.Model())
			}
		})
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"核心内容\n1. 要点"}}]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", "", server.URL+"/")
	text, err := c.Complete(context.Background(), "hello", Options{Temperature: 0.3, MaxTokens: 800, Timeout: time.Second})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "核心内容\n1. 要点" {
		t.Errorf("unexpected content %q", text)
	}
	if got.Model != defaultOpenAIModel || got.MaxTokens != 800 || got.Temperature != 0.3 {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "hello" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAIClientErrorStatusRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key sk-secret"}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-secret", "", server.URL)
	_, err := c.Complete(context.Background(), "hello", Options{Timeout: time.Second})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if strings.Contains(err.Error(), "sk-secret") {
		t.Errorf("api key leaked into error: %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestOpenAIClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", "", server.URL)
	_, err := c.Complete(context.Background(), "hello", Options{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestOpenAIClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", "", server.URL)
	if _, err := c.Complete(context.Background(), "hello", Options{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"错误信息很长", 2, "错误..."},
		{"配额", 2, "配额"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
