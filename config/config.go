// Package config loads sift settings from defaults, a .env file, SIFT_*
// environment variables and functional options, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/sift/ai"
)

// Embedder kinds.
const (
	EmbedderOpenAI = "openai" // OpenAI-compatible HTTP service
	EmbedderHash   = "hash"   // offline hashed bag of words
	EmbedderNone   = "none"   // lexical search only
)

// Environment variable names.
const (
	EnvStoragePath        = "SIFT_STORAGE_PATH"
	EnvAddr               = "SIFT_ADDR"
	EnvEmbedder           = "SIFT_EMBEDDER"
	EnvEmbeddingHost      = "SIFT_EMBEDDING_HOST"
	EnvEmbeddingModel     = "SIFT_EMBEDDING_MODEL"
	EnvEmbeddingToken     = "SIFT_EMBEDDING_TOKEN"
	EnvTitleWeight        = "SIFT_TITLE_WEIGHT"
	EnvPoolSize           = "SIFT_POOL_SIZE"
	EnvBatchSize          = "SIFT_EMBED_BATCH_SIZE"
	EnvEmbedRate          = "SIFT_EMBED_RATE"
	EnvSemanticCandidates = "SIFT_SEMANTIC_CANDIDATES"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds every tunable of a sift deployment.
type Config struct {
	// StoragePath is the root holding crawler output and snapshots.
	StoragePath string

	// Addr is the listen address of the HTTP API.
	Addr string

	// Embedder selects the embedding backend: EmbedderOpenAI, EmbedderHash or EmbedderNone.
	Embedder string

	EmbeddingHost  string
	EmbeddingModel string
	EmbeddingToken string

	// TitleWeight multiplies title term frequencies at index time.
	TitleWeight float64

	// PoolSize is the number of indexing workers; 0 picks a default.
	PoolSize int

	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// EmbedRate caps embedding requests per second; 0 disables the cap.
	EmbedRate float64

	// SemanticCandidates is the number of nearest vectors joined into every query.
	SemanticCandidates int
}

// Option overrides one setting after the environment has been read.
type Option func(*Config)

// WithStoragePath sets the storage root.
func WithStoragePath(path string) Option {
	return func(c *Config) {
		c.StoragePath = path
	}
}

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithEmbedder selects the embedding backend.
func WithEmbedder(kind string) Option {
	return func(c *Config) {
		c.Embedder = kind
	}
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingHost sets the embedding service URL.
func WithEmbeddingHost(host string) Option {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// Default returns the built-in settings.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		StoragePath:        "data",
		Addr:               ":8080",
		Embedder:           EmbedderOpenAI,
		EmbeddingHost:      aiDefaults.EmbeddingHost,
		EmbeddingModel:     aiDefaults.EmbeddingModel,
		EmbeddingToken:     aiDefaults.Token,
		TitleWeight:        5.0,
		BatchSize:          32,
		SemanticCandidates: 20,
	}
}

// Load builds a Config. When envFile is empty an optional ./.env is read;
// otherwise envFile must exist. Variables already set in the process
// environment win over the file.
func Load(envFile string, opts ...Option) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(EnvStoragePath, &c.StoragePath)
	setString(EnvAddr, &c.Addr)
	setString(EnvEmbedder, &c.Embedder)
	setString(EnvEmbeddingHost, &c.EmbeddingHost)
	setString(EnvEmbeddingModel, &c.EmbeddingModel)
	setString(EnvEmbeddingToken, &c.EmbeddingToken)

	if err := setFloat(EnvTitleWeight, &c.TitleWeight); err != nil {
		return err
	}
	if err := setInt(EnvPoolSize, &c.PoolSize); err != nil {
		return err
	}
	if err := setInt(EnvBatchSize, &c.BatchSize); err != nil {
		return err
	}
	if err := setFloat(EnvEmbedRate, &c.EmbedRate); err != nil {
		return err
	}
	return setInt(EnvSemanticCandidates, &c.SemanticCandidates)
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	c.Embedder = strings.ToLower(strings.TrimSpace(c.Embedder))
	switch {
	case strings.TrimSpace(c.StoragePath) == "":
		return fmt.Errorf("%w: storage path is required", ErrInvalidConfig)
	case c.Embedder != EmbedderOpenAI && c.Embedder != EmbedderHash && c.Embedder != EmbedderNone:
		return fmt.Errorf("%w: unknown embedder %q", ErrInvalidConfig, c.Embedder)
	case c.TitleWeight <= 0:
		return fmt.Errorf("%w: title weight must be positive", ErrInvalidConfig)
	case c.PoolSize < 0:
		return fmt.Errorf("%w: pool size must not be negative", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	case c.EmbedRate < 0:
		return fmt.Errorf("%w: embed rate must not be negative", ErrInvalidConfig)
	case c.SemanticCandidates < 0:
		return fmt.Errorf("%w: semantic candidates must not be negative", ErrInvalidConfig)
	}
	if c.Embedder == EmbedderOpenAI {
		if err := c.AIConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// AIConfig returns the embedding service settings.
func (c *Config) AIConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithToken(c.EmbeddingToken),
	)
	cfg.Normalize()
	return cfg
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	*dst = n
	return nil
}

func setFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	*dst = f
	return nil
}
