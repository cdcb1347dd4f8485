package report

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/nijaru/yt-summary/models"
)

const (
	MIMEType = "text/markdown"

	unknownValue      = "未知"
	timelineSegments  = 3
	timelineTextRunes = 50
	uploadDateLayout  = "20060102"

	maxTimestampSeconds = float64(math.MaxInt32)
)

// Formatter renders the Markdown report. The clock only affects the footer.
type Formatter struct {
	now func() time.Time
}

func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

// NewFormatterWithClock is used where the generation timestamp must be fixed.
func NewFormatterWithClock(now func() time.Time) *Formatter {
	return &Formatter{now: now}
}

func (f *Formatter) Format(summary models.Summary, info models.VideoInfo, transcript models.Transcript) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 视频总结：%s\n\n", info.Title)

	b.WriteString("## 📋 视频信息\n")
	fmt.Fprintf(&b, "- 标题：%s\n", info.Title)
	fmt.Fprintf(&b, "- 来源：%s\n", info.Channel)
	fmt.Fprintf(&b, "- 时长：%s\n", FormatDuration(info.Duration))
	fmt.Fprintf(&b, "- 上传日期：%s\n", FormatUploadDate(info.UploadDate))
	fmt.Fprintf(&b, "- 总结类型：%s\n\n", summary.Label())

	b.WriteString("## 📝 核心总结\n")
	b.WriteString(summary.Body)
	b.WriteString("\n\n")

	b.WriteString("## 🔑 关键要点\n")
	for i, point := range summary.KeyPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}

	if len(transcript.Segments) > 0 {
		b.WriteString("\n## ⏱️ 快速时间线（前3个重点）\n")
		for _, seg := range transcript.Segments[:min(timelineSegments, len(transcript.Segments))] {
			fmt.Fprintf(&b, "- **%s**：%s...\n", FormatTimestamp(seg.Start), firstRunes(seg.Text, timelineTextRunes))
		}
	}

	fmt.Fprintf(&b, "\n---\n生成时间：%s\n网页工具：视频总结助手", f.now().Format("2006-01-02 15:04:05"))

	return b.String()
}

// FormatDuration renders whole seconds as "{m}分{s}秒", or "未知" when unknown.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return unknownValue
	}
	return fmt.Sprintf("%d分%d秒", seconds/60, seconds%60)
}

// FormatUploadDate turns "YYYYMMDD" into "YYYY年MM月DD日".
func FormatUploadDate(date string) string {
	t, err := time.Parse(uploadDateLayout, strings.TrimSpace(date))
	if err != nil {
		return unknownValue
	}
	return t.Format("2006年01月02日")
}

// FormatTimestamp renders a segment start as zero-padded MM:SS. Minutes are
// not wrapped at an hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int(min(seconds, maxTimestampSeconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FileName is the download name offered to the browser.
func FileName(title string) string {
	return "视频总结_" + title + ".md"
}

// SafeFileName is FileName with path separators and control characters
// replaced, for writing to disk.
func SafeFileName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		cleaned = models.UnknownTitle
	}
	return FileName(cleaned)
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
