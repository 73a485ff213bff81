package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"

	SentimentScopeAll      = "all"
	SentimentScopeComments = "comments"
)

type AppConfig struct {
	AppEnv   string // EnvDevelopment or EnvProduction
	LogLevel slog.Level
	HTTPAddr string

	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	RedditBaseURL      string
	ProxyURLs          []string
	FetchLimit         int
	FetchMaxRetries    int
	RateLimitPerMinute int
	RequestTimeoutSecs int

	ValkeyAddress  string
	ValkeyPassword string

	PostgresURL string

	KeycloakURL   string
	KeycloakRealm string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string
	AlertEmail   string

	SentimentScope string
	MinItems       int
}

var Config AppConfig

func LoadConfig() {
	cfg := AppConfig{}

	cfg.AppEnv = loadOptional("APP_ENV", EnvDevelopment)
	cfg.HTTPAddr = loadOptional("HTTP_ADDR", ":8080")

	cfg.RedditClientID = loadOptional("REDDIT_CLIENT_ID", "")
	cfg.RedditClientSecret = loadOptional("REDDIT_CLIENT_SECRET", "")
	cfg.RedditUserAgent = loadOptional("REDDIT_USER_AGENT", "userlens/1.0")
	cfg.RedditBaseURL = loadOptional("REDDIT_BASE_URL", "")
	cfg.ProxyURLs = splitList(loadOptional("PROXY_URLS", ""))
	cfg.FetchLimit = loadInt("FETCH_LIMIT", 100)
	cfg.FetchMaxRetries = loadInt("FETCH_MAX_RETRIES", 4)
	cfg.RateLimitPerMinute = loadInt("RATE_LIMIT_PER_MINUTE", 60)
	cfg.RequestTimeoutSecs = loadInt("REQUEST_TIMEOUT_SECONDS", 30)

	cfg.ValkeyAddress = loadOptional("VALKEY_ADDRESS", "")
	cfg.ValkeyPassword = loadOptional("VALKEY_PASSWORD", "")

	cfg.PostgresURL = loadOptional("POSTGRES_URL", "")

	cfg.KeycloakURL = loadOptional("KEYCLOAK_URL", "")
	if cfg.KeycloakURL != "" {
		cfg.KeycloakRealm = loadRequired("KEYCLOAK_REALM")
	}

	cfg.SMTPHost = loadOptional("SMTP_HOST", "")
	if cfg.SMTPHost != "" {
		cfg.SMTPPort = loadRequired("SMTP_PORT")
		cfg.SMTPFrom = loadRequired("SMTP_FROM")
		cfg.SMTPPassword = loadRequired("SMTP_PASSWORD")
		cfg.AlertEmail = loadRequired("ALERT_EMAIL")
	}

	cfg.SentimentScope = strings.ToLower(loadOptional("SENTIMENT_SCOPE", SentimentScopeAll))
	if cfg.SentimentScope != SentimentScopeAll && cfg.SentimentScope != SentimentScopeComments {
		slog.Error("Invalid SENTIMENT_SCOPE, falling back to all", "value", cfg.SentimentScope)
		cfg.SentimentScope = SentimentScopeAll
	}
	cfg.MinItems = loadInt("MIN_ITEMS", 1)

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		slog.Error("Invalid integer env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func (c AppConfig) RedditOAuthEnabled() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}
