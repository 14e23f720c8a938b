package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

// HTTPAudioLoader downloads audio from any public URL
type HTTPAudioLoader struct {
	httpclient *http.Client
	timeout    time.Duration
}

// NewAudioLoader creates a loader with a sane transfer timeout
func NewAudioLoader() *HTTPAudioLoader {
	return &HTTPAudioLoader{httpclient: &http.Client{Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}}, timeout: time.Minute * 10}
}

// Load returns the bytes behind the URL, one attempt
func (l *HTTPAudioLoader) Load(ctx context.Context, urlStr string) ([]byte, error) {
	goapp.Log.Info().Str("url", goapp.Sanitize(urlStr)).Msg("download audio")
	ctx, cancelF := context.WithTimeout(ctx, l.timeout)
	defer cancelF()
	req, err := http.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	resp, err := l.httpclient.Do(req)
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
