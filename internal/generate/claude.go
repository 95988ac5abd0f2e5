// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"strings"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// claudeDefaultMaxTokens is used when a request leaves MaxTokens unset; the
// messages API requires the field.
const claudeDefaultMaxTokens = 1024

// ClaudeBackend calls the Claude messages API.
type ClaudeBackend struct {
	apiClient
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name returns "claude".
func (b *ClaudeBackend) Name() string { return "claude" }

// GenerateText calls the messages API and concatenates the text blocks of
// the reply.
func (b *ClaudeBackend) GenerateText(ctx context.Context, r Request) (string, error) {
	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}
	body := claudeRequest{
		Model:       b.model,
		MaxTokens:   maxTokens,
		System:      r.System,
		Temperature: r.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: r.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var resp claudeResponse
	if err := b.postJSON(ctx, b.Name(), claudeAPIURL, headers, body, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
