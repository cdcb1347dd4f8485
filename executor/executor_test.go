package executor

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := New().Execute(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("expected hello, got %q", out)
	}
}

func TestExecuteIncludesStderr(t *testing.T) {
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := New().Execute(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	if _, err := LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Execute(ctx, "sleep", "5")
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("expected interrupted error, got %v", err)
	}
}

func TestFakeRecordsCalls(t *testing.T) {
	f := &Fake{}
	f.Execute(context.Background(), "ffmpeg", "-i", "in.mp4", "out.mp3")

	calls := f.Calls()
	if len(calls) != 1 || calls[0].ArgAfter("-i") != "in.mp4" {
		t.Errorf("unexpected calls %v", calls)
	}
}
