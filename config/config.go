// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the binaries read.
type Config struct {
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	SearchProvider   string `envconfig:"SEARCH_PROVIDER" default:"tavily"`
	SearchMaxResults int    `envconfig:"SEARCH_MAX_RESULTS" default:"3"`
	TavilyAPIKey     string `envconfig:"TAVILY_API_KEY"`
	BraveAPIKey      string `envconfig:"BRAVE_API_KEY"`
	FetchPages       bool   `envconfig:"FETCH_PAGES" default:"false"`

	StateBackend string        `envconfig:"STATE_BACKEND" default:"s3"`
	StateBucket  string        `envconfig:"STATE_BUCKET" default:"ai-agent-state-bucket"`
	StatePrefix  string        `envconfig:"STATE_PREFIX" default:"states/"`
	StateDir     string        `envconfig:"STATE_DIR" default:"./states"`
	StateTTL     time.Duration `envconfig:"STATE_TTL"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./states.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the given .env files (default ".env") if they exist and then
// binds the environment into a Config. Real environment variables win over
// values from the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// ValidateAgent checks the keys needed to run the research agent.
func (c *Config) ValidateAgent() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	switch c.SearchProvider {
	case "tavily":
		if c.TavilyAPIKey == "" {
			return errors.New("TAVILY_API_KEY not set")
		}
	case "brave":
		if c.BraveAPIKey == "" {
			return errors.New("BRAVE_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown search provider %q", c.SearchProvider)
	}
	return nil
}
