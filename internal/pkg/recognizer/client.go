package recognizer

import (
	"context"
	"fmt"
	"io"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/sashabaranov/go-openai"
)

// Client calls the speech to text API (OpenAI Whisper)
type Client struct {
	oai   *openai.Client
	model string
}

// NewClient creates a recognizer client
func NewClient(key, url, model string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("no api key")
	}
	cfg := openai.DefaultConfig(key)
	if url != "" {
		cfg.BaseURL = url
	}
	if model == "" {
		model = openai.Whisper1
	}
	goapp.Log.Info().Str("model", model).Msg("cfg: recognizer")
	return &Client{oai: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Recognize sends the audio stream for transcription and returns the text.
// One attempt only - failures are the caller's to persist.
func (c *Client) Recognize(ctx context.Context, fileName string, r io.Reader) (string, error) {
	goapp.Log.Info().Str("file", fileName).Msg("transcribe")
	resp, err := c.oai.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: fileName,
		Reader:   r,
	})
	if err != nil {
		return "", fmt.Errorf("can't transcribe: %w", err)
	}
	return resp.Text, nil
}
