package translator

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4.1-2025-04-14"
const maxTokens = 1000

// Client translates texts using an LLM chat API
type Client struct {
	oai   *openai.Client
	model string
}

// NewClient creates a translator client
func NewClient(key, url, model string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("no api key")
	}
	cfg := openai.DefaultConfig(key)
	if url != "" {
		cfg.BaseURL = url
	}
	if model == "" {
		model = defaultModel
	}
	goapp.Log.Info().Str("model", model).Msg("cfg: translator")
	return &Client{oai: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Translate returns the text translated to the target language, tone preserved
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	goapp.Log.Info().Str("lang", targetLanguage).Msg("translate")
	resp, err := c.oai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("Translate the following text to %s. Preserve the tone and meaning while making it sound natural in the target language.",
					LanguageName(targetLanguage))},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("can't translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("can't translate: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
}

// LanguageName maps a language code to the name used in the translation prompt
func LanguageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return "English"
}
