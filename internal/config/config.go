// Package config loads configuration from the environment and sets up logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/recipescape-go/internal/cache"
	"github.com/raphaelgruber/recipescape-go/internal/db"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Annotation cache
	CacheTTL  time.Duration
	CacheSize int

	// HTTP server
	ServerPort        int
	CORSOrigins       []string
	RateLimitPerMin   int
	ImportConcurrency int

	// Logging
	LogFile      string
	LogLevel     slog.Level
	LogFileLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "recipescape"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "recipes"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		CacheTTL:  getDuration("RECIPESCAPE_CACHE_TTL", cache.DefaultTTL),
		CacheSize: getInt("RECIPESCAPE_CACHE_SIZE", cache.DefaultSize),

		ServerPort:        getInt("RECIPESCAPE_SERVER_PORT", 8484),
		CORSOrigins:       splitList(getEnv("RECIPESCAPE_CORS_ORIGINS", "")),
		RateLimitPerMin:   getInt("RECIPESCAPE_RATE_LIMIT", 300),
		ImportConcurrency: getInt("RECIPESCAPE_IMPORT_CONCURRENCY", 4),

		LogFile:      getEnv("RECIPESCAPE_LOG_FILE", "/tmp/recipescape.log"),
		LogLevel:     parseLogLevel(getEnv("RECIPESCAPE_LOG_LEVEL", "INFO")),
		LogFileLevel: parseLogLevel(getEnv("RECIPESCAPE_LOG_FILE_LEVEL", "DEBUG")),
	}
}

// DB returns the SurrealDB connection settings.
func (c Config) DB() db.Config {
	return db.Config{
		URL:       c.SurrealDBURL,
		Namespace: c.SurrealDBNamespace,
		Database:  c.SurrealDBDatabase,
		Username:  c.SurrealDBUser,
		Password:  c.SurrealDBPass,
		AuthLevel: c.SurrealDBAuthLevel,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt falls back to defaultVal when the variable is unset or not a number.
func getInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

// getDuration accepts Go durations ("90s", "10m") or plain seconds.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
