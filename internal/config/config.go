// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Environment string
	LogLevel    string
	DeviceID    string

	SharedStorePath string
	LocalStatePath  string
	BlobDir         string
	BlobBaseURL     string

	JWTSecretKey string

	TranslationAPIKey      string
	TranslationBaseURL     string
	TranslationModel       string
	TranslationTimeout     time.Duration
	TranslationMaxRetries  int
	TranslationConcurrency int
	TranslationRPS         float64
	TranslationBurst       int

	DisplayTimezone string
}

// New reads configuration from environment variables or a .env file.
func New() (*Config, error) {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		Environment:     env,
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		DeviceID:        getEnv("DEVICE_ID", ""),
		SharedStorePath: getEnv("SHARED_STORE_PATH", "messenger.db"),
		LocalStatePath:  getEnv("LOCAL_STATE_PATH", "local-state"),
		BlobDir:         getEnv("BLOB_DIR", "blobs"),
		BlobBaseURL:     getEnv("BLOB_BASE_URL", "file://blobs"),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),

		TranslationAPIKey:      getEnv("TRANSLATION_API_KEY", ""),
		TranslationBaseURL:     getEnv("TRANSLATION_BASE_URL", ""),
		TranslationModel:       getEnv("TRANSLATION_MODEL", "gpt-4o-mini"),
		TranslationTimeout:     getEnvAsDuration("TRANSLATION_TIMEOUT", 8*time.Second),
		TranslationMaxRetries:  getEnvAsInt("TRANSLATION_MAX_RETRIES", 2),
		TranslationConcurrency: getEnvAsInt("TRANSLATION_CONCURRENCY", 4),
		TranslationRPS:         getEnvAsFloat("TRANSLATION_RPS", 5),
		TranslationBurst:       getEnvAsInt("TRANSLATION_BURST", 10),

		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Local"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if isProduction(c.Environment) {
		for _, req := range []struct{ key, value string }{
			{"JWT_SECRET_KEY", c.JWTSecretKey},
			{"TRANSLATION_API_KEY", c.TranslationAPIKey},
			{"DEVICE_ID", c.DeviceID},
		} {
			if req.value == "" {
				err = multierr.Append(err, fmt.Errorf("missing required production environment variable %s", req.key))
			}
		}
	}
	if _, locErr := c.Location(); locErr != nil {
		err = multierr.Append(err, locErr)
	}
	if c.TranslationConcurrency <= 0 {
		err = multierr.Append(err, fmt.Errorf("TRANSLATION_CONCURRENCY must be positive, got %d", c.TranslationConcurrency))
	}
	return err
}

// Location resolves DisplayTimezone for date separators.
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return v
}

// getEnvAsDuration accepts Go durations ("8s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
	return defaultValue
}
