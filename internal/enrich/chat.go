// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/tidwall/gjson"
)

// Default API base URLs. Package-level vars for test substitution.
var (
	deepseekBaseURL = "https://api.deepseek.com"
	openaiBaseURL   = "https://api.openai.com/v1"
)

// ChatBackend calls an OpenAI-compatible /chat/completions endpoint.
// DeepSeek and OpenAI share this wire format.
type ChatBackend struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client

	// Prompt replaces the built-in prompt template when set.
	Prompt *template.Template
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Classify sends the rendered prompt and returns the first choice's text.
func (c *ChatBackend) Classify(ctx context.Context, in Input) (string, error) {
	prompt, err := renderPrompt(c.Prompt, in)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return "", fmt.Errorf("chat API returned %d: %s", resp.StatusCode, msg.String())
		}
		return "", fmt.Errorf("chat API returned %d: %s", resp.StatusCode, string(body))
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("chat API returned invalid JSON")
	}
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("no message content in chat API response")
	}
	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", fmt.Errorf("chat API returned empty content")
	}
	return text, nil
}
