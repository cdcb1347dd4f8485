package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/report"
	"github.com/nijaru/yt-summary/summary"
)

type fakeAcquirer struct {
	calls int
	err   error
	block chan struct{}
	seen  string
}

func (f *fakeAcquirer) Acquire(ctx context.Context, url, dir string) (string, models.VideoInfo, error) {
	f.calls++
	f.seen = dir
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", models.VideoInfo{}, f.err
	}
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return "", models.VideoInfo{}, err
	}
	return path, models.VideoInfo{Title: "测试视频", Channel: "频道", Duration: 90, SourceURL: url}, nil
}

type fakeExtractor struct{ err error }

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, dir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(dir, "temp_audio.mp3"), nil
}

type fakeTranscriber struct {
	err error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, dir string) (models.Transcript, error) {
	if f.err != nil {
		return models.Transcript{}, f.err
	}
	return models.Transcript{
		FullText: "第一句。第二句。",
		Segments: []models.Segment{{Start: 0, End: 2, Text: "第一句。"}},
	}, nil
}

type fakeSummarizer struct {
	degrade bool
	gotKey  string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript, title, apiKey string) summary.Result {
	f.gotKey = apiKey
	res := summary.Result{Summary: summary.Extract(transcript)}
	if f.degrade {
		res.Degradation = errors.SummaryDegradation("fake", fmt.Errorf("timeout"), "AI总结失败，自动使用快速提取总结")
	}
	return res
}

func newTestRunner(t *testing.T, acq *fakeAcquirer, ext *fakeExtractor, tr *fakeTranscriber, sum *fakeSummarizer) (*Runner, string) {
	t.Helper()
	tmp := t.TempDir()
	r := New(Deps{
		Acquirer:    acq,
		Extractor:   ext,
		Transcriber: tr,
		Summarizer:  sum,
		Formatter:   report.NewFormatterWithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	}, Config{TempDir: tmp, Timeout: time.Minute})
	return r, tmp
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected workspace to be removed, found %d entries", len(entries))
	}
}

func TestRun(t *testing.T) {
	acq := &fakeAcquirer{}
	sum := &fakeSummarizer{}
	r, tmp := newTestRunner(t, acq, &fakeExtractor{}, &fakeTranscriber{}, sum)

	var progress []Progress
	res, err := r.Run(context.Background(), Request{
		URL:      " https://example.com/v/1 ",
		APIKey:   " sk-test ",
		Progress: func(p Progress) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rep := res.Report
	if rep.ID == "" || rep.Title != "测试视频" || rep.FileName != "视频总结_测试视频.md" {
		t.Errorf("unexpected report %+v", rep)
	}
	if !strings.HasPrefix(rep.Markdown, "# 视频总结：测试视频\n") {
		t.Errorf("unexpected markdown %q", rep.Markdown)
	}
	if sum.gotKey != "sk-test" {
		t.Errorf("expected trimmed api key, got %q", sum.gotKey)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}

	want := []Progress{StageDownload, StageTranscribe, StageSummarize, StageDone}
	if len(progress) != len(want) {
		t.Fatalf("expected %d progress updates, got %v", len(want), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %+v, want %+v", i, progress[i], want[i])
		}
	}
	if len(res.Progress) != 4 || res.Progress[3] != "处理完成！" {
		t.Errorf("unexpected progress log %v", res.Progress)
	}

	assertEmptyDir(t, tmp)
}

func TestRunRejectsInvalidURL(t *testing.T) {
	acq := &fakeAcquirer{}
	r, _ := newTestRunner(t, acq, &fakeExtractor{}, &fakeTranscriber{}, &fakeSummarizer{})

	for _, url := range []string{"", "ftp://x", "not a url"} {
		_, err := r.Run(context.Background(), Request{URL: url})
		if !errors.Is(err, errors.KindInvalidInput) {
			t.Errorf("Run(%q) expected invalid input, got %v", url, err)
		}
	}
	if acq.calls != 0 {
		t.Errorf("expected no download attempt, got %d", acq.calls)
	}
}

func TestRunStageFailuresCleanUp(t *testing.T) {
	tests := []struct {
		name string
		acq  *fakeAcquirer
		ext  *fakeExtractor
		tr   *fakeTranscriber
		kind errors.Kind
	}{
		{
			name: "download",
			acq:  &fakeAcquirer{err: errors.AcquisitionFailure("x", nil, "视频下载失败")},
			ext:  &fakeExtractor{},
			tr:   &fakeTranscriber{},
			kind: errors.KindAcquisition,
		},
		{
			name: "extraction",
			acq:  &fakeAcquirer{},
			ext:  &fakeExtractor{err: fmt.Errorf("decode error")},
			tr:   &fakeTranscriber{},
			kind: errors.KindExtraction,
		},
		{
			name: "transcription",
			acq:  &fakeAcquirer{},
			ext:  &fakeExtractor{},
			tr:   &fakeTranscriber{err: fmt.Errorf("model crashed")},
			kind: errors.KindTranscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, tmp := newTestRunner(t, tt.acq, tt.ext, tt.tr, &fakeSummarizer{})
			_, err := r.Run(context.Background(), Request{URL: "https://example.com"})
			if errors.KindOf(err) != tt.kind {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
			assertEmptyDir(t, tmp)
		})
	}
}

func TestRunDegradedSummaryWarns(t *testing.T) {
	r, _ := newTestRunner(t, &fakeAcquirer{}, &fakeExtractor{}, &fakeTranscriber{}, &fakeSummarizer{degrade: true})

	res, err := r.Run(context.Background(), Request{URL: "https://example.com", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("expected degraded run to succeed, got %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", res.Warnings)
	}
	if res.Report.Summary.Method != models.MethodExtractive {
		t.Errorf("expected extractive summary, got %s", res.Report.Summary.Method)
	}
}

func TestRunOneAtATime(t *testing.T) {
	acq := &fakeAcquirer{block: make(chan struct{})}
	r, _ := newTestRunner(t, acq, &fakeExtractor{}, &fakeTranscriber{}, &fakeSummarizer{})

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), Request{URL: "https://example.com/1"})
		done <- err
	}()

	// Wait for the first run to hold the slot.
	deadline := time.After(2 * time.Second)
	for len(r.slot) == 0 {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, Request{URL: "https://example.com/2"})
	if !errors.Is(err, errors.KindBusy) {
		t.Errorf("expected busy error, got %v", err)
	}

	close(acq.block)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}
