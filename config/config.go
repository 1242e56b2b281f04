package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DataDirName is the per-project directory holding ragctx state.
const DataDirName = ".ragctx"

// Fallback policies for queries where no document scores above zero.
const (
	FallbackRawTopK = "raw-top-k"
	FallbackNone    = "none"
)

// Config holds all configuration for ragctx.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Context  ContextConfig  `yaml:"context"`
	LLM      LLMConfig      `yaml:"llm"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds scanning and chunking configuration.
type IndexConfig struct {
	Extensions   []string `yaml:"extensions"`
	IgnoreDirs   []string `yaml:"ignore_dirs"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	StopWords    []string `yaml:"stop_words"`
	ReadWorkers  int      `yaml:"read_workers"`
}

// RetrieveConfig holds ranking configuration.
type RetrieveConfig struct {
	TopK     int     `yaml:"top_k"`
	K1       float64 `yaml:"k1"`
	B        float64 `yaml:"b"`
	Fallback string  `yaml:"fallback"` // "raw-top-k" or "none"
}

// ContextConfig holds the context budget.
type ContextConfig struct {
	ReadChars int `yaml:"read_chars"`
	MaxChars  int `yaml:"max_chars"` // 0 means 2 * read_chars
}

// LLMConfig holds the chat completion endpoint configuration.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultStopWords is the small mixed Chinese/English stop-word list.
var DefaultStopWords = []string{
	"的", "了", "和", "是", "在", "我", "要", "把",
	"to", "the", "a", "an", "for", "and", "or", "is", "are",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Extensions:   []string{".js", ".ts", ".tsx", ".json", ".md", ".txt"},
			IgnoreDirs:   []string{"node_modules", ".git", "dist", "build", DataDirName},
			ChunkSize:    800,
			ChunkOverlap: 120,
			StopWords:    append([]string(nil), DefaultStopWords...),
			ReadWorkers:  8,
		},
		Retrieve: RetrieveConfig{
			TopK:     8,
			K1:       1.2,
			B:        0.75,
			Fallback: FallbackRawTopK,
		},
		Context: ContextConfig{
			ReadChars: 4000,
		},
		LLM: LLMConfig{
			BaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:          "qwen3-coder-plus",
			APIKeyEnv:      "LLM_API_KEY",
			Temperature:    0.2,
			TimeoutSeconds: 120,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragctx.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragctx.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides settings from environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"CHUNK_SIZE", &c.Index.ChunkSize},
		{"CHUNK_OVERLAP", &c.Index.ChunkOverlap},
		{"RAG_TOP_K", &c.Retrieve.TopK},
		{"RAG_READ_CHARS", &c.Context.ReadChars},
	}
	for _, v := range ints {
		raw, ok := lookup(v.key)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", v.key, raw, err)
		}
		*v.dst = n
	}

	if v, ok := lookup("LLM_BASE_URL"); ok && v != "" {
		c.LLM.BaseURL = v
	}
	if v, ok := lookup("LLM_MODEL"); ok && v != "" {
		c.LLM.Model = v
	}
	return nil
}

var (
	ErrInvalidChunkSize = errors.New("chunk_size must be positive")
	ErrInvalidTopK      = errors.New("top_k must not be negative")
	ErrInvalidBudget    = errors.New("read_chars must be positive")
	ErrInvalidFallback  = errors.New("unknown fallback policy")
)

// Validate checks the configuration and clamps the chunk overlap into
// [0, chunk_size).
func (c *Config) Validate() error {
	if c.Index.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.Index.ChunkOverlap < 0 {
		c.Index.ChunkOverlap = 0
	}
	if c.Index.ChunkOverlap >= c.Index.ChunkSize {
		c.Index.ChunkOverlap = c.Index.ChunkSize - 1
	}
	if c.Retrieve.TopK < 0 {
		return ErrInvalidTopK
	}
	if c.Context.ReadChars <= 0 {
		return ErrInvalidBudget
	}
	switch c.Retrieve.Fallback {
	case "":
		c.Retrieve.Fallback = FallbackRawTopK
	case FallbackRawTopK, FallbackNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFallback, c.Retrieve.Fallback)
	}
	return nil
}

// MaxContextChars returns the character budget of the assembled context.
func (c *Config) MaxContextChars() int {
	if c.Context.MaxChars > 0 {
		return c.Context.MaxChars
	}
	return c.Context.ReadChars * 2
}

// StopWordSet returns the configured stop words as a set.
func (c *Config) StopWordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Index.StopWords))
	for _, w := range c.Index.StopWords {
		set[w] = struct{}{}
	}
	return set
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the run history database.
func HistoryDBPath(dir string) string {
	return filepath.Join(dir, DataDirName, "history.db")
}

// EnsureDataDir ensures the .ragctx directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDirName), 0755)
}
