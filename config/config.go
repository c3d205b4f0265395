package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"edumate/internal/domain"
)

// Config holds all configuration for the tutoring assistant.
type Config struct {
	Library    LibraryConfig    `yaml:"library"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Index      IndexConfig      `yaml:"index"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Assemble   AssembleConfig   `yaml:"assemble"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LibraryConfig locates the corpus and controls batch ingestion.
type LibraryConfig struct {
	DataDir      string   `yaml:"data_dir"` // directory holding per-corpus databases
	Corpus       string   `yaml:"corpus"`   // corpus/session identifier
	Includes     []string `yaml:"includes"` // glob patterns for directory ingestion
	Excludes     []string `yaml:"excludes"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
}

// ChunkingConfig controls how documents are split.
type ChunkingConfig struct {
	ChunkSize       int     `yaml:"chunk_size"`       // target chunk size in characters
	OverlapFraction float64 `yaml:"overlap_fraction"` // fraction of chunk_size, < 0.5
	MinChunkSize    int     `yaml:"min_chunk_size"`   // trailing fragments below this merge into the previous chunk
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`    // "gemini", "openai", "mock"
	Model          string `yaml:"model"`       // e.g. "gemini-embedding-001"
	APIKeyEnv      string `yaml:"api_key_env"` // environment variable holding the API key
	BaseURL        string `yaml:"base_url"`    // OpenAI-compatible endpoint override (Ollama etc.)
	Dimension      int    `yaml:"dimension"`
	BatchSize      int    `yaml:"batch_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"` // retries for transient embedding failures
	Parallelism    int    `yaml:"parallelism"` // concurrent documents embedded during ingestion
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	Metric string `yaml:"metric"` // "cosine" or "l2", fixed at index creation
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"`     // results below this are dropped
	DedupJaccard    float64 `yaml:"dedup_jaccard"` // near-duplicate token similarity cutoff
	CacheSize       int     `yaml:"cache_size"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// AssembleConfig holds context assembly configuration.
type AssembleConfig struct {
	ContextChars int `yaml:"context_chars"` // maximum characters of passage text per prompt
}

// GenerationConfig holds generative model configuration.
type GenerationConfig struct {
	Provider       string  `yaml:"provider"` // "gemini", "openai", "mock"
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	BaseURL        string  `yaml:"base_url"`
	Temperature    float32 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	QuizQuestions  int     `yaml:"quiz_questions"` // default question count
	Flashcards     int     `yaml:"flashcards"`     // default card count
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			DataDir:      ".edumate",
			Corpus:       "default",
			Includes:     []string{"**/*.txt", "**/*.md", "**/*.markdown", "**/*.pdf", "**/*.docx"},
			Excludes:     []string{"**/.*/**", "**/node_modules/**"},
			MaxFileBytes: 10 << 20,
		},
		Chunking: ChunkingConfig{
			ChunkSize:       1200,
			OverlapFraction: 0.15,
			MinChunkSize:    200,
		},
		Embedding: EmbeddingConfig{
			Provider:       "gemini",
			Model:          "gemini-embedding-001",
			APIKeyEnv:      "GOOGLE_API_KEY",
			Dimension:      768,
			BatchSize:      100,
			TimeoutSeconds: 60,
			MaxRetries:     2,
			Parallelism:    4,
		},
		Index: IndexConfig{
			Metric: "cosine",
		},
		Retrieve: RetrieveConfig{
			TopK:            5,
			MinScore:        0.25,
			DedupJaccard:    0.9,
			CacheSize:       100,
			CacheTTLSeconds: 300,
		},
		Assemble: AssembleConfig{
			ContextChars: 6000,
		},
		Generation: GenerationConfig{
			Provider:       "gemini",
			Model:          "gemini-1.5-flash",
			APIKeyEnv:      "GOOGLE_API_KEY",
			Temperature:    0.4,
			TimeoutSeconds: 120,
			QuizQuestions:  5,
			Flashcards:     10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks configuration invariants. Violations are fatal at setup.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, c.Chunking.ChunkSize)
	}
	if c.Chunking.OverlapFraction < 0 || c.Chunking.OverlapFraction > 0.5 {
		return fmt.Errorf("%w: overlap_fraction must be in [0, 0.5], got %g", domain.ErrInvalidConfig, c.Chunking.OverlapFraction)
	}
	if c.Chunking.MinChunkSize < 0 || c.Chunking.MinChunkSize >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: min_chunk_size must be in [0, chunk_size), got %d", domain.ErrInvalidConfig, c.Chunking.MinChunkSize)
	}
	switch c.Index.Metric {
	case "cosine", "l2":
	default:
		return fmt.Errorf("%w: unknown index metric %q", domain.ErrInvalidConfig, c.Index.Metric)
	}
	switch c.Embedding.Provider {
	case "gemini", "openai", "mock":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, c.Embedding.Provider)
	}
	switch c.Generation.Provider {
	case "gemini", "openai", "mock":
	default:
		return fmt.Errorf("%w: unknown generation provider %q", domain.ErrInvalidConfig, c.Generation.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive, got %d", domain.ErrInvalidConfig, c.Embedding.Dimension)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidConfig, c.Retrieve.TopK)
	}
	if c.Assemble.ContextChars <= 0 {
		return fmt.Errorf("%w: context_chars must be positive, got %d", domain.ErrInvalidConfig, c.Assemble.ContextChars)
	}
	return nil
}

// EmbedTimeout returns the bounded timeout for one embedding call.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// GenerateTimeout returns the bounded timeout for one generation call.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for edumate.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "edumate.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".edumate", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CorpusDBPath returns the path of the corpus database.
func (c *Config) CorpusDBPath() string {
	return filepath.Join(c.Library.DataDir, c.Library.Corpus+".db")
}

// EnsureDataDir ensures the data directory exists.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.Library.DataDir, 0755)
}
