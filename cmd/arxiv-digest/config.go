package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-digest/internal/secrets"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// providerSecrets maps each provider to its secret file and environment variable.
var providerSecrets = map[types.Provider]struct{ file, env string }{
	types.ProviderDeepSeek:  {"deepseek-api-key", "DEEPSEEK_API_KEY"},
	types.ProviderOpenAI:    {"openai-api-key", "OPENAI_API_KEY"},
	types.ProviderAnthropic: {"anthropic-api-key", "ANTHROPIC_API_KEY"},
}

// setDefaults registers the built-in configuration with viper so config
// files, environment variables and flags only need to name what they change.
func setDefaults() {
	d := types.DefaultPipelineConfig()

	viper.SetDefault("fetch.timeout", d.Fetch.Timeout)
	viper.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	viper.SetDefault("fetch.categories", d.Fetch.Categories)
	viper.SetDefault("fetch.max_results", d.Fetch.MaxResults)
	viper.SetDefault("fetch.keyword_rules", d.Fetch.KeywordRules)
	viper.SetDefault("fetch.category_delay", d.Fetch.CategoryDelay)

	viper.SetDefault("enrich.provider", string(d.Enrich.Provider))
	viper.SetDefault("enrich.model", "")
	viper.SetDefault("enrich.base_url", "")
	viper.SetDefault("enrich.api_key", "")
	viper.SetDefault("enrich.max_retries", d.Enrich.MaxRetries)
	viper.SetDefault("enrich.prompt_file", "")
	viper.SetDefault("enrich.workers", d.Enrich.Workers)
	viper.SetDefault("enrich.temp_dir", d.Enrich.TempDir)
	viper.SetDefault("enrich.extractor", string(d.Enrich.Extractor))
	viper.SetDefault("enrich.first_page_limit", d.Enrich.FirstPageLimit)
	viper.SetDefault("enrich.download_timeout", d.Enrich.DownloadTimeout)

	viper.SetDefault("report.daily_dir", d.Report.DailyDir)
	viper.SetDefault("store.path", d.Store.Path)
	viper.SetDefault("store.disabled", false)
	viper.SetDefault("max_papers", d.MaxPapers)
}

// bindFlags binds the named flags of cmd to viper keys. It runs from the
// command's PreRunE so commands sharing a key do not overwrite each
// other's binding.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// loadPipelineConfig reads every setting through viper.
func loadPipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			Categories:    splitList(viper.GetStringSlice("fetch.categories")),
			MaxResults:    viper.GetInt("fetch.max_results"),
			CategoryDelay: viper.GetDuration("fetch.category_delay"),
		},
		Enrich: types.EnrichConfig{
			AIConfig: types.AIConfig{
				Provider:   types.Provider(strings.ToLower(viper.GetString("enrich.provider"))),
				Model:      viper.GetString("enrich.model"),
				BaseURL:    viper.GetString("enrich.base_url"),
				APIKey:     viper.GetString("enrich.api_key"),
				MaxRetries: viper.GetInt("enrich.max_retries"),
				PromptFile: viper.GetString("enrich.prompt_file"),
			},
			Workers:         viper.GetInt("enrich.workers"),
			TempDir:         viper.GetString("enrich.temp_dir"),
			Extractor:       types.ExtractorKind(viper.GetString("enrich.extractor")),
			FirstPageLimit:  viper.GetInt("enrich.first_page_limit"),
			DownloadTimeout: viper.GetDuration("enrich.download_timeout"),
		},
		Report: types.ReportConfig{DailyDir: viper.GetString("report.daily_dir")},
		Store: types.StoreConfig{
			Path:     viper.GetString("store.path"),
			Disabled: viper.GetBool("store.disabled"),
		},
		MaxPapers: viper.GetInt("max_papers"),
	}
	cfg.Fetch.KeywordRules = keywordRules(viper.GetStringMapStringSlice("fetch.keyword_rules"), cfg.Fetch.Categories)

	if cfg.Enrich.APIKey == "" {
		if s, ok := providerSecrets[cfg.Enrich.Provider]; ok {
			cfg.Enrich.APIKey = secrets.Resolve(loadedSecrets, s.file, s.env)
		}
	}
	return cfg
}

// keywordRules re-keys rules by the configured category spelling. Viper
// lowercases map keys read from config files, while arXiv categories are
// mixed case.
func keywordRules(raw map[string][]string, categories []string) map[string][]string {
	rules := make(map[string][]string)
	for key, keywords := range raw {
		matched := false
		for _, c := range categories {
			if strings.EqualFold(key, c) {
				rules[c] = keywords
				matched = true
			}
		}
		if !matched {
			rules[key] = keywords
		}
	}
	return rules
}

// splitList flattens comma-separated entries so both repeated flags and
// "cs.DC,cs.AI" work.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// missingKeyError explains where the API key for provider is looked up.
func missingKeyError(provider types.Provider) error {
	s, ok := providerSecrets[provider]
	if !ok {
		return fmt.Errorf("no API key for provider %q: set enrich.api_key", provider)
	}
	return fmt.Errorf("no API key for provider %s: write it to .secrets/%s or set %s", provider, s.file, s.env)
}
