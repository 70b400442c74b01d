package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string
	TokenFile      string
	LogFile        string
	PageSize       int
	MaxResults     int
	ResponseStyle  string
	RequestTimeout time.Duration
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     getEnv("RAG_API_URL", "http://localhost:8000/api"),
		TokenFile:      getEnv("RAG_TOKEN_FILE", defaultPath("token")),
		LogFile:        getEnv("RAG_LOG_FILE", defaultPath("ragcli.log")),
		PageSize:       getEnvInt("RAG_PAGE_SIZE", 10),
		MaxResults:     getEnvInt("RAG_MAX_RESULTS", 5),
		ResponseStyle:  getEnv("RAG_RESPONSE_STYLE", "concise"),
		RequestTimeout: time.Duration(getEnvInt("RAG_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if cfg.PageSize < 1 {
		log.Printf("WARN: RAG_PAGE_SIZE=%d invalid, using 10", cfg.PageSize)
		cfg.PageSize = 10
	}

	return cfg
}

// defaultPath resolves a file under the per-user ragcli directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".ragcli", name)
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
