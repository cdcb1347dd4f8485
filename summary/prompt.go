package summary

import (
	"fmt"
	"strings"
)

const summaryPrompt = `请用简单易懂的语言总结以下视频内容，结构清晰：
1. 核心内容（1段话，不超过3行）
2. 3个关键要点（分点列，每点不超过20字）

视频标题：%s
视频原文：%s`

const (
	defaultPromptChars = 3000
	maxAIKeyPoints     = 3
	keyPointCutset     = "123.•- "
)

var keyPointMarkers = []string{"1.", "2.", "3.", "•", "-"}

func buildPrompt(title, transcript string, maxChars int) string {
	return fmt.Sprintf(summaryPrompt, title, firstRunes(transcript, maxChars))
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// ParseKeyPoints picks marker-prefixed lines out of a model reply, strips the
// marker and keeps at most three, in order.
func ParseKeyPoints(content string) []string {
	points := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !hasKeyPointMarker(line) {
			continue
		}
		points = append(points, strings.TrimSpace(strings.TrimLeft(line, keyPointCutset)))
	}
	if len(points) > maxAIKeyPoints {
		points = points[:maxAIKeyPoints]
	}
	return points
}

func hasKeyPointMarker(line string) bool {
	for _, m := range keyPointMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}
