package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 4, c.Players)
	assert.Equal(t, 1500*time.Millisecond, c.BotThinkMin)
	assert.Equal(t, 2*time.Second, c.BotThinkMax)
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"GURCH_PLAYERS":       "3",
		"GURCH_HUMAN_SEAT":    "2",
		"GURCH_SEED":          "20240917",
		"GURCH_HUMAN_TURN":    "10s",
		"GURCH_BOT_THINK_MIN": "100ms",
		"GURCH_BOT_THINK_MAX": "200ms",
		"GURCH_REDIS_URL":     " redis://localhost:6379/0 ",
		"GURCH_LOG_FORMAT":    "json",
		"GURCH_MAX_VOTE":      "",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Players)
	assert.Equal(t, 2, c.HumanSeat)
	assert.Equal(t, uint64(20240917), c.Seed)
	assert.Equal(t, 10*time.Second, c.HumanTurn)
	assert.Equal(t, "redis://localhost:6379/0", c.RedisURL)
	assert.Equal(t, 5, c.MaxVote, "empty value keeps the default")

	rules := c.HouseRules()
	assert.Equal(t, uint8(3), rules.NumPlayers)
	assert.Equal(t, int8(2), rules.HumanSeat)
	assert.Equal(t, uint8(5), rules.MaxVote)
}

func TestHeadlessDropsHumanSeat(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"GURCH_HEADLESS": "true", "GURCH_HUMAN_SEAT": "1"}))
	require.NoError(t, err)
	assert.True(t, c.Headless)
	assert.Equal(t, -1, c.HumanSeat)
}

func TestFromEnvReportsEveryError(t *testing.T) {
	_, err := FromEnv(env(map[string]string{
		"GURCH_PLAYERS":       "6",
		"GURCH_HUMAN_TURN":    "soon",
		"GURCH_BOT_THINK_MIN": "3s",
		"GURCH_LOG_LEVEL":     "loud",
	}))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "players must be 3 or 4")
	assert.Contains(t, msg, "GURCH_HUMAN_TURN")
	assert.Contains(t, msg, "bot think min")
	assert.Contains(t, msg, "log level")
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"human seat past table", func(c *Config) { c.HumanSeat = 4 }},
		{"dealer negative", func(c *Config) { c.Dealer = -1 }},
		{"no hands", func(c *Config) { c.Hands = 0 }},
		{"first swap too large", func(c *Config) { c.MaxFirstSwap = 6 }},
		{"vote zero", func(c *Config) { c.MaxVote = 0 }},
		{"negative penalty", func(c *Config) { c.NonParticipantPenalty = -1 }},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GURCH_PLAYERS=3\nGURCH_DEALER=2\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("GURCH_PLAYERS")
		os.Unsetenv("GURCH_DEALER")
	})

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Players)
	assert.Equal(t, 2, c.Dealer)
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "debug"
	c.LogFormat = "json"
	log := c.NewLogger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}
