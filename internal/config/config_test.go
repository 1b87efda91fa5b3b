package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{"RIOT_API_KEY": "RGAPI-test"}))
	require.NoError(t, err)

	assert.Equal(t, "RGAPI-test", cfg.Riot.APIKey)
	assert.Equal(t, DefaultDBName, cfg.DBName)
	assert.Equal(t, DefaultBackupDir, cfg.BackupDir)
	assert.Equal(t, []string{"euw1", "eun1", "kr", "na1"}, cfg.Riot.Regions)
	assert.Equal(t, 100, cfg.RateLimit.MaxCallsPerWindow)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, float64(20), cfg.RateLimit.PerSecond)
	assert.Equal(t, 5, cfg.Riot.MaxThrottleRetries)
	assert.False(t, cfg.SlackEnabled())
	assert.False(t, cfg.PubSubEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"RIOT_API_KEY":     "key",
		"RIOT_REGIONS":     " KR , na1,,",
		"RATE_MAX_CALLS":   "50",
		"RATE_WINDOW":      "90s",
		"SLACK_BOT_TOKEN":  "xoxb",
		"SLACK_CHANNEL_ID": "C1",
		"GCP_PROJECT":      "proj",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"kr", "na1"}, cfg.Riot.Regions)
	assert.Equal(t, 50, cfg.RateLimit.MaxCallsPerWindow)
	assert.Equal(t, 90*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.SlackEnabled())
	assert.True(t, cfg.PubSubEnabled())
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{}},
		{"bad max calls", map[string]string{"RIOT_API_KEY": "k", "RATE_MAX_CALLS": "zero"}},
		{"negative max calls", map[string]string{"RIOT_API_KEY": "k", "RATE_MAX_CALLS": "-1"}},
		{"bad window", map[string]string{"RIOT_API_KEY": "k", "RATE_WINDOW": "soon"}},
		{"bad retries", map[string]string{"RIOT_API_KEY": "k", "THROTTLE_MAX_RETRIES": "-2"}},
		{"no regions", map[string]string{"RIOT_API_KEY": "k", "RIOT_REGIONS": " , "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_StoreOnlyAllowsMissingAPIKey(t *testing.T) {
	cfg, err := fromEnv(lookupFrom(map[string]string{"DB_NAME": "other.db"}), false)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.DBName)
	assert.Empty(t, cfg.Riot.APIKey)
}
