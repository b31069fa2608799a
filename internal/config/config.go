package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`
	LogLevel   string `json:"log_level"`

	// Record fixtures
	DataDirectory  string `json:"data_directory"`
	RecordFixture  string `json:"record_fixture"`
	RecordPassword string `json:"-"`

	// Simulated latencies
	TypingDelay time.Duration `json:"typing_delay"`
	ExportDelay time.Duration `json:"export_delay"`
	UploadDelay time.Duration `json:"upload_delay"`

	// Sessions and background jobs
	SessionTTL       time.Duration `json:"session_ttl"`
	ReminderSchedule string        `json:"reminder_schedule"`

	// Chat messages per second allowed per session (burst is three times that)
	ChatRate float64 `json:"chat_rate"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:       ":8080",
		Debug:            false,
		LogLevel:         "info",
		DataDirectory:    filepath.Join(wd, "data"),
		TypingDelay:      1500 * time.Millisecond,
		ExportDelay:      3 * time.Second,
		UploadDelay:      2 * time.Second,
		SessionTTL:       30 * time.Minute,
		ReminderSchedule: "0 9 * * *",
		ChatRate:         1,
	}
}

// Load reads an optional .env file and then the FINDASH_* environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded, using environment and defaults")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function (os.Getenv in production)
func FromEnv(getenv func(string) string) *Config {
	cfg := DefaultConfig()

	if addr := getenv("FINDASH_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := getenv("FINDASH_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if level := getenv("FINDASH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if dataDir := getenv("FINDASH_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	cfg.RecordFixture = strings.TrimSpace(getenv("FINDASH_RECORD_FILE"))
	cfg.RecordPassword = getenv("FINDASH_RECORD_PASSWORD")

	cfg.TypingDelay = durationEnv(getenv, "FINDASH_TYPING_DELAY", cfg.TypingDelay)
	cfg.ExportDelay = durationEnv(getenv, "FINDASH_EXPORT_DELAY", cfg.ExportDelay)
	cfg.UploadDelay = durationEnv(getenv, "FINDASH_UPLOAD_DELAY", cfg.UploadDelay)
	cfg.SessionTTL = durationEnv(getenv, "FINDASH_SESSION_TTL", cfg.SessionTTL)

	if sched := getenv("FINDASH_REMINDER_SCHEDULE"); sched != "" {
		cfg.ReminderSchedule = sched
	}
	if v := getenv("FINDASH_CHAT_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			logrus.Warnf("invalid FINDASH_CHAT_RATE %q, using %v", v, cfg.ChatRate)
		} else {
			cfg.ChatRate = rate
		}
	}

	return cfg
}

// durationEnv parses a duration variable; a zero duration is allowed and
// disables the corresponding delay
func durationEnv(getenv func(string) string, key string, fallback time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logrus.Warnf("invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
