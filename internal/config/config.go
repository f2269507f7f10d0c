// internal/config/config.go
//
// Process configuration read from the environment.
// Load expects godotenv to have been applied already (see main.go), so values
// from a local .env file are visible here as ordinary environment variables.

package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the server's runtime configuration.
type Config struct {
	Port           string
	LogLevel       string
	DBPath         string
	ClientOrigin   string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	DailySalt      string
	Production     bool          // NODE_ENV=production: secure, SameSite=None cookies
	SessionTTL     time.Duration // idle time before a live game is dropped
	HistoryLimit   int           // max undo depth per game, 0 = unlimited
}

// Load reads every setting, falling back to development defaults.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", "./data/solitaire.db"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "solitaire_token"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		Production:     os.Getenv("NODE_ENV") == "production",
		SessionTTL:     envDuration("SESSION_TTL", 6*time.Hour),
		HistoryLimit:   envInt("HISTORY_LIMIT", 0),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envDuration accepts Go durations ("90m") or a plain number of seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
