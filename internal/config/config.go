package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/youaudio/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DBPath       string
	DownloadsDir string
	TempAudioDir string
	Proxy        string
	SubtitleLang string
	AudioCodec   string
	AudioQuality string
	Retention    time.Duration
	LogLevel     string
	LogFormat    string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", constants.DefaultPort),
		DBPath:       getEnv("DB_PATH", constants.DefaultDBPath),
		DownloadsDir: getEnv("DOWNLOADS_DIR", constants.DefaultDownloadsDir),
		TempAudioDir: getEnv("TEMP_AUDIO_DIR", constants.DefaultTempAudioDir),
		Proxy:        getEnv("PROXY", ""),
		SubtitleLang: getEnv("SUBTITLE_LANGUAGE", constants.DefaultSubtitleLang),
		AudioCodec:   getEnv("AUDIO_CODEC", constants.DefaultAudioCodec),
		AudioQuality: getEnv("AUDIO_QUALITY", constants.DefaultAudioQuality),
		Retention:    getDurationEnv("RETENTION", constants.DefaultRetention),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
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

	if c.DownloadsDir == "" {
		errors = append(errors, "DOWNLOADS_DIR cannot be empty")
	}

	if c.TempAudioDir == "" {
		errors = append(errors, "TEMP_AUDIO_DIR cannot be empty")
	}

	if c.Proxy != "" {
		if _, err := url.Parse(FormatProxyURL(c.Proxy)); err != nil {
			errors = append(errors, fmt.Sprintf("PROXY is not a valid URL: %s", c.Proxy))
		}
	}

	if c.SubtitleLang == "" {
		errors = append(errors, "SUBTITLE_LANGUAGE cannot be empty")
	}

	if c.AudioCodec == "" {
		errors = append(errors, "AUDIO_CODEC cannot be empty")
	}

	if c.Retention <= 0 {
		errors = append(errors, fmt.Sprintf("RETENTION must be positive, got: %s", c.Retention))
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

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// FormatProxyURL ensures a proxy URL carries a scheme. Bare host:port
// values are assumed to be plain HTTP proxies.
func FormatProxyURL(proxy string) string {
	if proxy == "" {
		return ""
	}
	for _, scheme := range []string{"http://", "https://", "socks4://", "socks5://"} {
		if strings.HasPrefix(proxy, scheme) {
			return proxy
		}
	}
	return "http://" + proxy
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
