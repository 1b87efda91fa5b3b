package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	DefaultDBName             = "ladder.db"
	DefaultBackupDir          = "backups"
	DefaultPort               = "8080"
	DefaultMaxCallsPerWindow  = 100
	DefaultWindow             = 2 * time.Minute
	DefaultPerSecond          = 20
	DefaultMaxThrottleRetries = 5
)

// DefaultRegions are the platform regions whose ladders are harvested.
var DefaultRegions = []string{"euw1", "eun1", "kr", "na1"}

// Load reads configuration from environment variables and .env file.
func Load() (Config, error) {
	loadDotEnv()
	return FromEnv(os.LookupEnv)
}

// LoadForStore is Load for commands that only touch the store, so RIOT_API_KEY may be unset.
func LoadForStore() (Config, error) {
	loadDotEnv()
	return fromEnv(os.LookupEnv, false)
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	return fromEnv(lookup, true)
}

func fromEnv(lookup func(string) (string, bool), requireAPIKey bool) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	apiKey := getEnv("RIOT_API_KEY", "")
	if apiKey == "" && requireAPIKey {
		return Config{}, fmt.Errorf("required environment variable RIOT_API_KEY is not set")
	}

	maxCalls, err := strconv.Atoi(getEnv("RATE_MAX_CALLS", strconv.Itoa(DefaultMaxCallsPerWindow)))
	if err != nil || maxCalls <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_MAX_CALLS: must be a positive integer")
	}
	window, err := time.ParseDuration(getEnv("RATE_WINDOW", DefaultWindow.String()))
	if err != nil || window <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_WINDOW: must be a positive duration")
	}
	perSecond, err := strconv.ParseFloat(getEnv("RATE_PER_SECOND", strconv.Itoa(DefaultPerSecond)), 64)
	if err != nil || perSecond <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_PER_SECOND: must be a positive number")
	}
	retries, err := strconv.Atoi(getEnv("THROTTLE_MAX_RETRIES", strconv.Itoa(DefaultMaxThrottleRetries)))
	if err != nil || retries < 0 {
		return Config{}, fmt.Errorf("invalid THROTTLE_MAX_RETRIES: must be zero or a positive integer")
	}

	cfg := Config{
		DBName:    getEnv("DB_NAME", DefaultDBName),
		BackupDir: getEnv("BACKUP_DIR", DefaultBackupDir),
		Port:      getEnv("PORT", DefaultPort),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		Riot: RiotConfig{
			APIKey:             apiKey,
			Regions:            splitList(getEnv("RIOT_REGIONS", strings.Join(DefaultRegions, ","))),
			MaxThrottleRetries: retries,
		},
		RateLimit: RateLimitConfig{
			MaxCallsPerWindow: maxCalls,
			Window:            window,
			PerSecond:         perSecond,
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}
	if len(cfg.Riot.Regions) == 0 {
		return Config{}, fmt.Errorf("RIOT_REGIONS must name at least one region")
	}
	return cfg, nil
}

// ApplyLogLevel sets the global logger level from the configured name.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, keeping default", "level", c.LogLevel)
		return
	}
	log.SetLevel(level)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
