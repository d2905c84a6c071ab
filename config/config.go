package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (via an optional .env file) with sensible defaults.
type Config struct {
	ServerAddr  string // Listen address for the HTTP API, e.g. ":8080"
	ProjectName string // Used for the exported file name: <project>.wav

	SampleRate int // Session sample rate; every imported buffer is resampled to this

	ImportWatchDir string // Directory watched for dropped audio files ("" disables the watcher)
	MaxUploadMB    int64  // Per-request multipart memory limit

	TickInterval int // Transport broadcast interval in milliseconds

	WebAppDir string // Path to the web UI files

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		ProjectName:    getEnv("PROJECT_NAME", "untitled"),
		SampleRate:     getEnvInt("SAMPLE_RATE", 44100),
		ImportWatchDir: getEnv("IMPORT_WATCH_DIR", filepath.Join("imports", "inbox")),
		MaxUploadMB:    int64(getEnvInt("MAX_UPLOAD_MB", 64)),
		TickInterval:   getEnvInt("TICK_INTERVAL_MS", 30),
		WebAppDir:      getEnv("WEB_APP_DIR", filepath.Join("web", "ui")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPath:        getEnv("LOG_PATH", ""),
		LogMaxSize:     getEnvInt("LOG_MAX_SIZE", 50),
		LogMaxBackups:  getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:      getEnvInt("LOG_MAX_AGE", 14),
	}
}
