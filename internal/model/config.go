package model

import "time"

// Config is the complete neutralizer configuration.
// It is built from defaults, the config file, environment and CLI flags (in
// that order) and then passed explicitly to every component that needs it.
type Config struct {
	Chunking     ChunkingConfig     `yaml:"chunking" mapstructure:"chunking"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Filter       FilterConfig       `yaml:"filter" mapstructure:"filter"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ChunkingConfig controls how long articles are split before detection
type ChunkingConfig struct {
	Size     int `yaml:"size" mapstructure:"size"`           // Target chunk length in bytes
	Overlap  int `yaml:"overlap" mapstructure:"overlap"`     // Bytes shared between neighbouring chunks
	MinChunk int `yaml:"min_chunk" mapstructure:"min_chunk"` // Chunks shorter than this (trimmed) are not yielded
	Window   int `yaml:"window" mapstructure:"window"`       // Search radius around the target for a clean break
}

// LLMConfig selects and tunes the detection / rewrite provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	Passes      []string      `yaml:"passes" mapstructure:"passes"` // Detection passes to run per chunk
	Rewrite     bool          `yaml:"rewrite" mapstructure:"rewrite"` // Also request a neutral rewrite and diff it
	PromptsFile string        `yaml:"prompts_file,omitempty" mapstructure:"prompts_file"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls caching of raw detector responses
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Articles processed in parallel (batch)
	ChunkWorkers int `yaml:"chunk_workers" mapstructure:"chunk_workers"` // Detector calls in flight per article
}

// RateLimitingConfig throttles calls to the LLM provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// FilterConfig extends the built-in false-positive table
type FilterConfig struct {
	ExtraFalsePositives []string `yaml:"extra_false_positives" mapstructure:"extra_false_positives"`
	FalsePositivesFile  string   `yaml:"false_positives_file,omitempty" mapstructure:"false_positives_file"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	Field         string `yaml:"field" mapstructure:"field"` // Field name recorded on every span
}

// Detection pass names
const (
	PassHighRecall  = "high_recall"
	PassAdversarial = "adversarial"
)

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:     3000,
			Overlap:  500,
			MinChunk: 500,
			Window:   500,
		},
		LLM: LLMConfig{
			Provider:    "", // Disabled by default
			Timeout:     60 * time.Second,
			MaxTokens:   2000,
			Temperature: 0.1,
			Passes:      []string{PassHighRecall, PassAdversarial},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".neutralizer-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			ChunkWorkers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Field:         "body",
		},
	}
}
