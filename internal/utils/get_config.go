package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v2"
)

const DefaultConfigPath = "config.yaml"

var configKeys = []string{
	// Server
	"PORT",
	"APP_URL",
	"RATE_LIMIT_MAX",
	"LOG_LEVEL",
	"LOG_DIR",

	// Database configuration
	"DB_HOST",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"DB_PORT",
	"DB_SSLMODE",

	// JWT
	"JWT_SECRET",
	"JWT_TTL_MINUTES",

	// AWS S3 configuration
	"AWS_S3_BUCKET",
	"AWS_S3_REGION",
	"AWS_S3_ENDPOINT",
	"AWS_ACCESS_KEY",
	"AWS_SECRET_KEY",

	// Recipes
	"PAGE_SIZE",
	"SHORT_LINK_LENGTH",
	"SHORT_LINK_ATTEMPTS",
}

var defaults = map[string]string{
	"PORT":                "8000",
	"APP_URL":             "http://localhost:8000",
	"RATE_LIMIT_MAX":      "20",
	"LOG_LEVEL":           "info",
	"LOG_DIR":             "./logs",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_SSLMODE":          "disable",
	"JWT_TTL_MINUTES":     "1440",
	"AWS_S3_REGION":       "us-east-1",
	"PAGE_SIZE":           "6",
	"SHORT_LINK_LENGTH":   "6",
	"SHORT_LINK_ATTEMPTS": "1",
}

var (
	configMu sync.RWMutex
	config   = map[string]string{}
)

// LoadConfig reads the YAML file at path (missing file is not an error) and
// lets environment variables of the same name override it.
func LoadConfig(path string) {
	values := map[string]string{}
	for k, v := range defaults {
		values[k] = v
	}

	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else {
		fromFile := map[string]string{}
		if err := yaml.Unmarshal(file, &fromFile); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}

	for _, key := range configKeys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	configMu.Lock()
	config = values
	configMu.Unlock()
}

func GetConfig(key string) string {
	configMu.RLock()
	defer configMu.RUnlock()
	if v, ok := config[key]; ok {
		return v
	}
	return defaults[key]
}

func GetConfigInt(key string, fallback int) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return fallback
	}
	return v
}

// SetConfig overrides a single key. Used by tests and the CLI flags.
func SetConfig(key, value string) {
	configMu.Lock()
	defer configMu.Unlock()
	config[key] = value
}
