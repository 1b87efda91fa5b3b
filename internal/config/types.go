package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	BackupDir string
	Port      string
	LogLevel  string
	Turso     TursoConfig
	Riot      RiotConfig
	RateLimit RateLimitConfig
	Slack     SlackConfig
	ProjectID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type RiotConfig struct {
	APIKey             string
	Regions            []string
	MaxThrottleRetries int
}

// RateLimitConfig describes the external call quota the harvester has to respect.
type RateLimitConfig struct {
	MaxCallsPerWindow int
	Window            time.Duration
	PerSecond         float64
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// SlackEnabled reports whether run notifications can be posted.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}

// PubSubEnabled reports whether run reports should be published.
func (c Config) PubSubEnabled() bool {
	return c.ProjectID != ""
}
