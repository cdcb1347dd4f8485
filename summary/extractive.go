package summary

import (
	"strings"

	"github.com/nijaru/yt-summary/models"
)

const (
	sentenceTerminator = "。"

	// Transcripts up to this many sentences are used verbatim.
	shortTranscriptSentences = 10
	headSentences            = 5
	tailSentences            = 3
	maxExtractiveKeyPoints   = 5
)

// SplitSentences splits text on the Chinese full stop, trimming whitespace and
// dropping empty fragments.
func SplitSentences(text string) []string {
	parts := strings.Split(text, sentenceTerminator)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Extract builds the head+tail extractive summary. It never fails.
func Extract(text string) models.Summary {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return models.Summary{
			KeyPoints: []string{},
			Method:    models.MethodExtractive,
		}
	}

	picked := sentences
	if len(sentences) > shortTranscriptSentences {
		picked = make([]string, 0, headSentences+tailSentences)
		picked = append(picked, sentences[:headSentences]...)
		picked = append(picked, sentences[len(sentences)-tailSentences:]...)
	}

	n := min(maxExtractiveKeyPoints, len(sentences))
	keyPoints := make([]string, n)
	copy(keyPoints, sentences[:n])

	return models.Summary{
		Body:      strings.Join(picked, sentenceTerminator) + sentenceTerminator,
		KeyPoints: keyPoints,
		Method:    models.MethodExtractive,
	}
}
