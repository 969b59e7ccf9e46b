package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env        string        `env:"APP_ENV" env-default:"development"`
		Port       int           `env:"APP_PORT" env-default:"8080"`
		SentryUrl  string        `env:"SENTRY_URL"`
		Timezone   string        `env:"APP_TIMEZONE" env-default:"UTC"`
		AdminToken string        `env:"APP_ADMIN_TOKEN"`
		ShutdownIn time.Duration `env:"APP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
	}
	Telegram struct {
		User  int64  `env:"TELEGRAM_USER"`
		Token string `env:"TELEGRAM_TOKEN"`
	}
	Twitter struct {
		BaseURL           string        `env:"TWITTER_BASE_URL" env-default:"https://api.twitter.com"`
		BearerToken       string        `env:"TWITTER_BEARER_TOKEN"`
		Handles           string        `env:"TWITTER_HANDLES"`
		Lookback          time.Duration `env:"TWITTER_LOOKBACK" env-default:"24h"`
		PageSize          int           `env:"TWITTER_PAGE_SIZE" env-default:"100"`
		MaxPages          int           `env:"TWITTER_MAX_PAGES" env-default:"10"`
		RequestsPerWindow int           `env:"TWITTER_REQUESTS_PER_WINDOW" env-default:"15"`
		RateWindow        time.Duration `env:"TWITTER_RATE_WINDOW" env-default:"15m"`
		Cooldown          time.Duration `env:"TWITTER_COOLDOWN" env-default:"60s"`
		MaxCooldown       time.Duration `env:"TWITTER_MAX_COOLDOWN" env-default:"16m"`
		MaxRetries        int           `env:"TWITTER_MAX_RETRIES" env-default:"5"`
		Concurrency       int           `env:"TWITTER_CONCURRENCY" env-default:"2"`
		RequestTimeout    time.Duration `env:"TWITTER_REQUEST_TIMEOUT" env-default:"30s"`
		UserIDCacheTTL    time.Duration `env:"TWITTER_USER_ID_CACHE_TTL" env-default:"24h"`
	}
	Digest struct {
		MinEngagement int           `env:"DIGEST_MIN_ENGAGEMENT" env-default:"50"`
		RunAt         string        `env:"DIGEST_RUN_AT" env-default:"23:00"`
		RunTimeout    time.Duration `env:"DIGEST_RUN_TIMEOUT" env-default:"2h"`
		Title         string        `env:"DIGEST_TITLE" env-default:"Daily Social Media Summary Report"`
	}
	LLM struct {
		BaseURL     string  `env:"LLM_BASE_URL"`
		APIKey      string  `env:"LLM_API_KEY"`
		Model       string  `env:"LLM_MODEL" env-default:"gpt-4"`
		Temperature float32 `env:"LLM_TEMPERATURE" env-default:"0.7"`
		MaxTokens   int     `env:"LLM_MAX_TOKENS" env-default:"2000"`
	}
	Email struct {
		APIKey  string `env:"RESEND_API_KEY"`
		BaseURL string `env:"RESEND_BASE_URL"`
		From    string `env:"EMAIL_FROM"`
		To      string `env:"EMAIL_TO"`
		Subject string `env:"EMAIL_SUBJECT" env-default:"Daily w3.wave Macro Update"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	var err error
	once.Do(func() {
		if loadErr := godotenv.Load(); loadErr != nil {
			log.Println("No .env file found, reading configuration from environment")
		}

		cfg = &Config{}
		if err = cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			err = fmt.Errorf("failed to read configuration: %w\n%s", err, help)
			return
		}
		err = cfg.Validate()
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Digest.MinEngagement < 0 {
		return fmt.Errorf("DIGEST_MIN_ENGAGEMENT must be >= 0, got %d", c.Digest.MinEngagement)
	}
	if c.Twitter.RequestsPerWindow <= 0 || c.Twitter.RateWindow <= 0 {
		return fmt.Errorf("TWITTER_REQUESTS_PER_WINDOW and TWITTER_RATE_WINDOW must be positive")
	}
	if c.Twitter.PageSize < 5 || c.Twitter.PageSize > 100 {
		return fmt.Errorf("TWITTER_PAGE_SIZE must be within [5, 100], got %d", c.Twitter.PageSize)
	}
	if _, _, err := c.RunAt(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// GetDSN returns the postgres connection url.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

// Handles returns the tracked account handles, trimmed of '@' and deduplicated
// while keeping their configured order.
func (c *Config) Handles() []string {
	return ParseHandles(c.Twitter.Handles)
}

func ParseHandles(raw string) []string {
	seen := make(map[string]struct{})
	var handles []string
	for _, part := range strings.Split(raw, ",") {
		h := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "@"))
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, h)
	}
	return handles
}

// Recipients splits EMAIL_TO on commas.
func (c *Config) Recipients() []string {
	var out []string
	for _, part := range strings.Split(c.Email.To, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// RunAt parses DIGEST_RUN_AT as HH:MM.
func (c *Config) RunAt() (hour, minute uint, err error) {
	t, err := time.Parse("15:04", c.Digest.RunAt)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DIGEST_RUN_AT %q, expected HH:MM: %w", c.Digest.RunAt, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}
