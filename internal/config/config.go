package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/setgraph/enricher/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	DBPath              string
	AudioDir            string
	LogLevel            string
	LogFormat           string
	MusicBrainzURL      string
	SpotifyURL          string
	SpotifyToken        string
	BeatportURL         string
	JunoURL             string
	TraxsourceURL       string
	ConfigTTL           time.Duration
	ProviderCallTimeout time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		AudioDir:            getEnv("AUDIO_DIR", constants.DefaultAudioDir),
		LogLevel:            getEnv("LOG_LEVEL", constants.DefaultLogLevel),
		LogFormat:           getEnv("LOG_FORMAT", constants.DefaultLogFormat),
		MusicBrainzURL:      getEnv("MUSICBRAINZ_URL", constants.DefaultMusicBrainzURL),
		SpotifyURL:          getEnv("SPOTIFY_URL", constants.DefaultSpotifyURL),
		SpotifyToken:        getEnv("SPOTIFY_TOKEN", ""),
		BeatportURL:         getEnv("BEATPORT_URL", constants.DefaultBeatportURL),
		JunoURL:             getEnv("JUNO_URL", constants.DefaultJunoURL),
		TraxsourceURL:       getEnv("TRAXSOURCE_URL", constants.DefaultTraxsourceURL),
		ConfigTTL:           getEnvDuration("CONFIG_TTL", constants.DefaultConfigTTL),
		ProviderCallTimeout: getEnvDuration("PROVIDER_CALL_TIMEOUT", constants.DefaultProviderCallTimeout),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	for name, value := range map[string]string{
		"MUSICBRAINZ_URL": c.MusicBrainzURL,
		"SPOTIFY_URL":     c.SpotifyURL,
		"BEATPORT_URL":    c.BeatportURL,
		"JUNO_URL":        c.JunoURL,
		"TRAXSOURCE_URL":  c.TraxsourceURL,
	} {
		if value == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
			continue
		}
		if u, err := url.Parse(value); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", name, value))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.ConfigTTL <= 0 {
		errors = append(errors, fmt.Sprintf("CONFIG_TTL must be positive, got: %s", c.ConfigTTL))
	}
	if c.ProviderCallTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("PROVIDER_CALL_TIMEOUT must be positive, got: %s", c.ProviderCallTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvDuration retrieves a duration environment variable with a fallback default
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
