package synthesizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

const defaultModel = "eleven_multilingual_v2"

// Client communicates with an ElevenLabs compatible text to speech service
type Client struct {
	httpclient *http.Client
	url        string
	key        string
	model      string
	timeout    time.Duration
}

// NewClient creates a synthesizer client
func NewClient(url, key, model string) (*Client, error) {
	res := Client{}
	if url == "" {
		return nil, fmt.Errorf("no synthesizer URL")
	}
	if key == "" {
		return nil, fmt.Errorf("no api key")
	}
	if model == "" {
		model = defaultModel
	}
	res.url = url
	res.key = key
	res.model = model
	res.timeout = time.Minute * 3
	res.httpclient = ttsHTTPClient()
	return &res, nil
}

type request struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize turns the text into audio bytes using the wanted voice.
// One attempt only.
func (sp *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()
	b, err := json.Marshal(request{Text: text, ModelID: sp.model,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5}})
	if err != nil {
		return nil, fmt.Errorf("can't marshal request: %w", err)
	}
	urlStr := fmt.Sprintf("%s/v1/text-to-speech/%s", sp.url, voiceID)
	goapp.Log.Info().Str("url", urlStr).Str("voice", voiceID).Msg("synthesize")
	req, err := http.NewRequest(http.MethodPost, urlStr, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", sp.key)
	req = req.WithContext(ctx)
	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
	}
	res, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read body: %w", err)
	}
	return res, nil
}

func ttsHTTPClient() *http.Client {
	return &http.Client{Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}}
}
