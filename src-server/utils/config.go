package utils

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	minPremiumSweepInterval = 6 * time.Hour
	maxPremiumSweepInterval = 12 * time.Hour
)

type Config struct {
	discordGuildID  string
	discordAppToken string
	discordClientId string
	ownerID         string

	databaseURL string
	redisURL    string

	voteListenAddr     string
	topggAuth          string
	dblAuth            string
	discordsComAuth    string
	premiumSweepEvery  time.Duration
	premiumGracePeriod time.Duration

	metricCollectionInterval time.Duration
}

// NewConfig reads the config from the environment and exits the process
// when something required is missing.
func NewConfig() *Config {
	config, err := LoadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	return config
}

// LoadConfig builds a Config from getenv.
func LoadConfig(getenv func(string) string) (*Config, error) {
	required := func(key string) (string, error) {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return "", fmt.Errorf("%s is not set", key)
		}
		return value, nil
	}
	duration := func(key string, fallback time.Duration) (time.Duration, error) {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return fallback, nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%s must be positive", key)
		}
		return d, nil
	}

	c := &Config{}
	var err error

	if c.discordGuildID, err = required("DISCORD_GUILD_ID"); err != nil {
		return nil, err
	}
	slog.Debug("env", "DISCORD_GUILD_ID", c.discordGuildID)

	if c.discordAppToken, err = required("DISCORD_APP_TOKEN"); err != nil {
		return nil, err
	}
	slog.Debug("env", "DISCORD_APP_TOKEN", redact(c.discordAppToken))

	if c.discordClientId, err = required("DISCORD_CLIENT_ID"); err != nil {
		return nil, err
	}
	slog.Debug("env", "DISCORD_CLIENT_ID", c.discordClientId)

	c.ownerID = strings.TrimSpace(getenv("OWNER_ID"))

	c.databaseURL = strings.TrimSpace(getenv("DATABASE_URL"))
	if c.databaseURL == "" {
		c.databaseURL = "file:./sqlite.db?mode=rwc"
	}
	c.redisURL = strings.TrimSpace(getenv("REDIS_URL"))

	c.voteListenAddr = strings.TrimSpace(getenv("VOTE_LISTEN_ADDR"))
	if c.voteListenAddr == "" {
		c.voteListenAddr = "127.0.0.1:8000"
	}
	slog.Debug("env", "VOTE_LISTEN_ADDR", c.voteListenAddr)

	c.topggAuth = getenv("TOPGG_AUTH")
	c.dblAuth = getenv("DBL_AUTH")
	c.discordsComAuth = getenv("DISCORDSCOM_AUTH")
	for key, value := range map[string]string{
		"TOPGG_AUTH":       c.topggAuth,
		"DBL_AUTH":         c.dblAuth,
		"DISCORDSCOM_AUTH": c.discordsComAuth,
	} {
		if value == "" {
			slog.Warn(key + " is not set, its vote route will reject every request")
		}
	}

	if c.premiumSweepEvery, err = duration("PREMIUM_SWEEP_INTERVAL", maxPremiumSweepInterval); err != nil {
		return nil, err
	}
	switch {
	case c.premiumSweepEvery < minPremiumSweepInterval:
		slog.Warn("PREMIUM_SWEEP_INTERVAL too short, clamping", "interval", c.premiumSweepEvery, "min", minPremiumSweepInterval)
		c.premiumSweepEvery = minPremiumSweepInterval
	case c.premiumSweepEvery > maxPremiumSweepInterval:
		slog.Warn("PREMIUM_SWEEP_INTERVAL too long, clamping", "interval", c.premiumSweepEvery, "max", maxPremiumSweepInterval)
		c.premiumSweepEvery = maxPremiumSweepInterval
	}
	slog.Debug("env", "PREMIUM_SWEEP_INTERVAL", c.premiumSweepEvery)

	if c.premiumGracePeriod, err = duration("PREMIUM_GRACE_PERIOD", 72*time.Hour); err != nil {
		return nil, err
	}
	slog.Debug("env", "PREMIUM_GRACE_PERIOD", c.premiumGracePeriod)

	if c.metricCollectionInterval, err = duration("METRIC_COLLECTION_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}

	return c, nil
}

func redact(secret string) string {
	if len(secret) <= 3 {
		return "..."
	}
	return secret[0:3] + "..."
}

// Get DISCORD_GUILD_ID env
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientId() string {
	return c.discordClientId
}

// Get OWNER_ID env, may be blank
func (c *Config) GetOwnerID() string {
	return c.ownerID
}

// Get DATABASE_URL env, default to a sqlite file in the working directory
func (c *Config) GetDatabaseURL() string {
	return c.databaseURL
}

// Get REDIS_URL env, may be blank
func (c *Config) GetRedisURL() string {
	return c.redisURL
}

// Get VOTE_LISTEN_ADDR env, default to 127.0.0.1:8000
func (c *Config) GetVoteListenAddr() string {
	return c.voteListenAddr
}

// Get TOPGG_AUTH env
func (c *Config) GetTopggAuth() string {
	return c.topggAuth
}

// Get DBL_AUTH env
func (c *Config) GetDBLAuth() string {
	return c.dblAuth
}

// Get DISCORDSCOM_AUTH env
func (c *Config) GetDiscordsComAuth() string {
	return c.discordsComAuth
}

// Get PREMIUM_SWEEP_INTERVAL env, between 6h and 12h
func (c *Config) GetPremiumSweepInterval() time.Duration {
	return c.premiumSweepEvery
}

// Get PREMIUM_GRACE_PERIOD env, default to 3 days
func (c *Config) GetPremiumGracePeriod() time.Duration {
	return c.premiumGracePeriod
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
