package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/executor"
)

func writeVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir)
	fake := &executor.Fake{Handler: func(name string, args []string) (string, error) {
		return "", os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	}}

	out, err := NewFFmpeg("", fake).Extract(context.Background(), video, dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != filepath.Join(dir, "temp_audio.mp3") {
		t.Errorf("unexpected output path %s", out)
	}

	call := fake.Calls()[0]
	if call.Name != "ffmpeg" || call.ArgAfter("-i") != video || call.ArgAfter("-b:a") != "128k" {
		t.Errorf("unexpected ffmpeg call %s", call)
	}
}

func TestExtractFailure(t *testing.T) {
	dir := t.TempDir()
	video := writeVideo(t, dir)
	fake := &executor.Fake{Handler: func(string, []string) (string, error) {
		return "", fmt.Errorf("Invalid data found when processing input")
	}}

	_, err := NewFFmpeg("", fake).Extract(context.Background(), video, dir)
	if errors.KindOf(err) != errors.KindExtraction {
		t.Errorf("expected extraction failure, got %v", err)
	}
}

func TestExtractNoOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFFmpeg("", &executor.Fake{}).Extract(context.Background(), writeVideo(t, dir), dir)
	if errors.KindOf(err) != errors.KindExtraction {
		t.Errorf("expected extraction failure when no audio is written, got %v", err)
	}
}

func TestExtractMissingVideo(t *testing.T) {
	fake := &executor.Fake{}
	_, err := NewFFmpeg("", fake).Extract(context.Background(), "/nonexistent/clip.mp4", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing video")
	}
	if len(fake.Calls()) != 0 {
		t.Error("expected ffmpeg not to run")
	}
}
