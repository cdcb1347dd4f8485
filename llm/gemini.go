package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiClient struct {
	key   string
	model string
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{key: apiKey, model: model}
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	reqCtx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := genai.NewClient(reqCtx, &genai.ClientConfig{
		APIKey:  c.key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errors.Wrap(err, "create gemini client")
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	logrus.WithFields(logrus.Fields{
		"model":      c.model,
		"prompt_len": len(prompt),
	}).Debug("Sending gemini generate request")

	result, err := client.Models.GenerateContent(reqCtx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("empty response from gemini")
	}
	return text, nil
}
