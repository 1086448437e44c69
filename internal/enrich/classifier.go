// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"text/template"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Input is what the classifier sees of one paper.
type Input struct {
	Title     string
	Abstract  string
	FirstPage string
}

// Classifier abstracts the model API so tests can supply a mock. It returns
// the raw model text; ParseResponse turns it into an Enrichment.
type Classifier interface {
	Classify(ctx context.Context, in Input) (string, error)
}

// NewClassifier builds the backend selected by cfg.Provider.
func NewClassifier(cfg types.AIConfig, client *http.Client) (Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %s", cfg.Provider)
	}
	prompt, err := LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "", types.ProviderDeepSeek:
		return newChat(cfg, deepseekBaseURL, "deepseek-chat", client, prompt), nil
	case types.ProviderOpenAI:
		return newChat(cfg, openaiBaseURL, "gpt-4o-mini", client, prompt), nil
	case types.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultClaudeModel
		}
		return &ClaudeBackend{
			APIKey:  cfg.APIKey,
			Model:   model,
			BaseURL: cfg.BaseURL,
			Client:  client,
			Prompt:  prompt,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func newChat(cfg types.AIConfig, baseURL, model string, client *http.Client, prompt *template.Template) *ChatBackend {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return &ChatBackend{
		APIKey:  cfg.APIKey,
		Model:   model,
		BaseURL: baseURL,
		Client:  client,
		Prompt:  prompt,
	}
}
