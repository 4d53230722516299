package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/search.yaml"

var defaultAllowedOrigins = []string{
	"https://tryasimov.ai",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MinConns       int    `yaml:"min_conns"`
	MaxConns       int    `yaml:"max_conns"`
	ConnectRetries int    `yaml:"connect_retries"`
}

type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // bedrock or openai
	Region     string `yaml:"region"`
	ModelID    string `yaml:"model_id"`
	Dimensions int    `yaml:"dimensions"`
	OpenAIKey  string `yaml:"-"`
	CacheSize  int    `yaml:"cache_size"`
}

type SearchConfig struct {
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	RRFConstant    float64       `yaml:"rrf_constant"`
	HybridParallel bool          `yaml:"hybrid_parallel"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	TTL      time.Duration `yaml:"ttl"`
}

type RecordingsConfig struct {
	Dir    string `yaml:"dir"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

type Config struct {
	Port           string           `yaml:"port"`
	LogLevel       string           `yaml:"log_level"`
	LogFormat      string           `yaml:"log_format"`
	AllowedOrigins []string         `yaml:"allowed_origins"`
	Database       DatabaseConfig   `yaml:"database"`
	Embedding      EmbeddingConfig  `yaml:"embedding"`
	Search         SearchConfig     `yaml:"search"`
	Redis          RedisConfig      `yaml:"redis"`
	Recordings     RecordingsConfig `yaml:"recordings"`
}

// Load reads the configuration and validates it for a process that serves
// searches.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read reads the optional YAML file at SEARCH_CONFIG_PATH and applies
// environment overrides and defaults without validating. Commands that
// never open the store use it directly.
func Read() (*Config, error) {
	path := os.Getenv("SEARCH_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("SEARCH_API_PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MinConns = getEnvInt("DB_MIN_CONNS", cfg.Database.MinConns)
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", cfg.Database.MaxConns)
	cfg.Database.ConnectRetries = getEnvInt("DB_CONNECT_RETRIES", cfg.Database.ConnectRetries)

	cfg.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Region = getEnv("AWS_REGION", cfg.Embedding.Region)
	cfg.Embedding.ModelID = getEnv("EMBEDDING_MODEL_ID", cfg.Embedding.ModelID)
	cfg.Embedding.Dimensions = getEnvInt("EMBEDDING_DIMENSIONS", cfg.Embedding.Dimensions)
	cfg.Embedding.OpenAIKey = getEnv("OPEN_AI_KEY", cfg.Embedding.OpenAIKey)
	cfg.Embedding.CacheSize = getEnvInt("EMBEDDING_CACHE_SIZE", cfg.Embedding.CacheSize)

	cfg.Search.QueryTimeout = getEnvDuration("QUERY_TIMEOUT", cfg.Search.QueryTimeout)
	cfg.Search.RRFConstant = getEnvFloat("RRF_CONSTANT", cfg.Search.RRFConstant)
	cfg.Search.HybridParallel = getEnvBool("HYBRID_PARALLEL", cfg.Search.HybridParallel)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.TTL = getEnvDuration("REDIS_TTL", cfg.Redis.TTL)

	cfg.Recordings.Dir = getEnv("RECORDINGS_DIR", cfg.Recordings.Dir)
	cfg.Recordings.Bucket = getEnv("RECORDINGS_BUCKET", cfg.Recordings.Bucket)
	cfg.Recordings.Prefix = getEnv("RECORDINGS_PREFIX", cfg.Recordings.Prefix)
	cfg.Recordings.Region = getEnv("RECORDINGS_REGION", cfg.Recordings.Region)
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}

	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 1
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 8
	}
	if cfg.Database.ConnectRetries == 0 {
		cfg.Database.ConnectRetries = 5
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "bedrock"
	}
	if cfg.Embedding.Region == "" {
		cfg.Embedding.Region = "us-east-1"
	}
	if cfg.Embedding.ModelID == "" {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.ModelID = "text-embedding-3-small"
		default:
			cfg.Embedding.ModelID = "amazon.titan-embed-text-v2:0"
		}
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}

	if cfg.Search.QueryTimeout == 0 {
		cfg.Search.QueryTimeout = 10 * time.Second
	}
	if cfg.Search.RRFConstant == 0 {
		cfg.Search.RRFConstant = 60
	}

	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 30 * time.Minute
	}
	if cfg.Recordings.Region == "" {
		cfg.Recordings.Region = cfg.Embedding.Region
	}
}

// Validate reports the first configuration problem that prevents startup.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns <= 0 {
		return fmt.Errorf("invalid pool size: min=%d max=%d", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("invalid pool size: min_conns %d exceeds max_conns %d", c.Database.MinConns, c.Database.MaxConns)
	}
	switch c.Embedding.Provider {
	case "bedrock", "openai":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", c.Embedding.Dimensions)
	}
	if c.Search.RRFConstant < 0 {
		return fmt.Errorf("invalid rrf_constant: %v", c.Search.RRFConstant)
	}
	if c.Search.QueryTimeout < 0 {
		return fmt.Errorf("invalid query_timeout: %s", c.Search.QueryTimeout)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
