package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string
	Port               string
	LogLevel           string
	MongoURI           string
	MongoDatabase      string
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	RedisURL           string
	CORSAllowedOrigins []string
	BulkConcurrency    int
	RequestTimeout     time.Duration
	OTLPEndpoint       string
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	bulkConcurrency, err := strconv.Atoi(getEnv("BULK_CONCURRENCY", "8"))
	if err != nil || bulkConcurrency < 1 {
		return nil, fmt.Errorf("invalid BULK_CONCURRENCY: %q", os.Getenv("BULK_CONCURRENCY"))
	}

	mongoURI, err := mongoURIFromEnv()
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("missing required environment variable JWT_SECRET")
	}

	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8081"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MongoURI:           mongoURI,
		MongoDatabase:      getEnv("MONGO_DATABASE", "okr_project"),
		JWTSecret:          jwtSecret,
		JWTIssuer:          getEnv("JWT_ISSUER", "okrproject"),
		TokenTTL:           tokenTTL,
		RedisURL:           os.Getenv("REDIS_URL"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		BulkConcurrency:    bulkConcurrency,
		RequestTimeout:     requestTimeout,
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

// mongoURIFromEnv prefers MONGO_URI and otherwise builds an Atlas URI from
// its parts.
func mongoURIFromEnv() (string, error) {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri, nil
	}

	username := os.Getenv("MONGO_USERNAME")
	password := os.Getenv("MONGO_PASSWORD")
	cluster := os.Getenv("MONGO_CLUSTER")
	appName := os.Getenv("MONGO_APP_NAME")
	if username == "" || password == "" || cluster == "" || appName == "" {
		return "", fmt.Errorf("missing MongoDB configuration: set MONGO_URI or MONGO_USERNAME, MONGO_PASSWORD, MONGO_CLUSTER and MONGO_APP_NAME")
	}

	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		url.QueryEscape(username), url.QueryEscape(password), cluster, url.QueryEscape(appName)), nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
