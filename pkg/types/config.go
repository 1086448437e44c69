package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the arXiv fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Categories lists the arXiv categories queried, in order.
	Categories []string `json:"categories" yaml:"categories"`

	// MaxResults is the per-category result cap sent to the API (default 2000).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// KeywordRules maps a category to keywords of which at least one must
	// appear in the abstract (case-insensitive) for an entry to be kept.
	// Categories without an entry accept everything.
	KeywordRules map[string][]string `json:"keyword_rules" yaml:"keyword_rules"`

	// CategoryDelay is the pause between consecutive category requests (default 3s).
	CategoryDelay time.Duration `json:"category_delay" yaml:"category_delay"`
}

// Provider identifies the model API used for enrichment.
type Provider string

const (
	ProviderDeepSeek  Provider = "deepseek"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// AIConfig holds settings for the Generative AI API.
type AIConfig struct {
	// Provider selects the backend wire format and default endpoint.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the provider's default API base URL.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// PromptFile optionally replaces the built-in prompt template.
	PromptFile string `json:"prompt_file,omitempty" yaml:"prompt_file,omitempty"`
}

// ExtractorKind selects how first-page text is pulled out of a PDF.
type ExtractorKind string

const (
	ExtractorNative    ExtractorKind = "native"
	ExtractorPdftotext ExtractorKind = "pdftotext"
)

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	AIConfig `yaml:",inline"`

	// Workers is the size of the enrichment worker pool (default 10).
	Workers int `json:"workers" yaml:"workers"`

	// TempDir holds downloaded PDFs while they are processed.
	TempDir string `json:"temp_dir" yaml:"temp_dir"`

	// Extractor selects the first-page text backend.
	Extractor ExtractorKind `json:"extractor" yaml:"extractor"`

	// FirstPageLimit caps the first-page text handed to the model (default 4096).
	FirstPageLimit int `json:"first_page_limit" yaml:"first_page_limit"`

	// DownloadTimeout bounds a single PDF download (default 30s).
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout"`
}

// ReportConfig holds settings for the weekly Markdown reports.
type ReportConfig struct {
	// DailyDir is the directory holding the weekly files (default "docs/daily").
	DailyDir string `json:"daily_dir" yaml:"daily_dir"`
}

// StoreConfig holds settings for the enrichment cache.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/digest.db").
	Path string `json:"path" yaml:"path"`

	// Disabled turns the cache off: every paper is enriched again.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
	Report ReportConfig `json:"report" yaml:"report"`
	Store  StoreConfig  `json:"store" yaml:"store"`

	// MaxPapers caps the papers processed per day; 0 means no cap.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`
}

// DefaultKeywordRules returns the built-in abstract filters: the broad AI and
// ML listings only keep papers about acceleration.
func DefaultKeywordRules() map[string][]string {
	accel := []string{"accelerate", "accelerating", "acceleration"}
	return map[string][]string{
		"cs.AI": accel,
		"cs.LG": accel,
	}
}

// DefaultPipelineConfig returns the configuration used when neither a config
// file nor flags override a setting.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "arxiv-digest/0.1",
			},
			Categories:    []string{"cs.DC", "cs.AI", "cs.LG"},
			MaxResults:    2000,
			KeywordRules:  DefaultKeywordRules(),
			CategoryDelay: 3 * time.Second,
		},
		Enrich: EnrichConfig{
			AIConfig: AIConfig{
				Provider:   ProviderDeepSeek,
				Model:      "deepseek-chat",
				MaxRetries: 3,
			},
			Workers:         10,
			TempDir:         "temp_pdfs",
			Extractor:       ExtractorNative,
			FirstPageLimit:  4096,
			DownloadTimeout: 30 * time.Second,
		},
		Report: ReportConfig{DailyDir: "docs/daily"},
		Store:  StoreConfig{Path: "data/digest.db"},
	}
}
