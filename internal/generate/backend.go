// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drafts paper text through a Generative AI API. Backends
// turn a prompt into text; the Drafter renders prompts from the document and
// writes every completed body back through the editor so the References
// block stays in step with the new markers.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-drafter/internal/httputil"
	"github.com/pdiddy/paper-drafter/internal/metrics"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// ErrNoAPIKey is returned when a backend is requested without a key.
var ErrNoAPIKey = errors.New("no API key configured")

// ErrEmptyResponse is returned when the API answers without any text.
var ErrEmptyResponse = errors.New("API returned no text")

// Request is one text-generation call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Backend abstracts the Generative AI API so tests can supply a mock.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// GenerateText returns the model's reply to req.
	GenerateText(ctx context.Context, req Request) (string, error)
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	base := apiClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		base.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	switch cfg.Backend {
	case types.BackendOpenAI, "":
		return &OpenAIBackend{apiClient: base}, nil
	case types.BackendClaude:
		return &ClaudeBackend{apiClient: base}, nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}

// apiClient holds what both HTTP backends share.
type apiClient struct {
	apiKey     string
	model      string
	userAgent  string
	maxRetries int
	client     *http.Client
	limiter    *rate.Limiter
}

// postJSON sends body to url and decodes a 200 response into out. Non-200
// responses are returned as errors carrying the status and body.
func (c *apiClient) postJSON(ctx context.Context, backend, url string, headers map[string]string, body, out any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGeneration(backend, start, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := c.client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("calling %s API: %w", backend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s API returned %d: %s", backend, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", backend, err)
	}
	return nil
}
