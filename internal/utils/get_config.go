package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database and signing, both required
	DatabaseURL string `yaml:"DATABASE_URL"`
	TokenSecret string `yaml:"TOKEN_SECRET"`

	// HTTP server
	AppPort      string `yaml:"APP_PORT"`
	RateLimitMax *int   `yaml:"RATE_LIMIT_MAX"` // nil means unset, 0 disables
	LogFile      string `yaml:"LOG_FILE"`

	// Lifetimes, Go duration strings
	TokenTTL           string `yaml:"TOKEN_TTL"`
	SessionTTL         string `yaml:"SESSION_TTL"`
	TelegramAuthMaxAge string `yaml:"TELEGRAM_AUTH_MAX_AGE"`

	// Telegram Login Widget
	TelegramBotToken string `yaml:"TELEGRAM_BOT_TOKEN"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`
}

const defaultRateLimitMax = 10

var (
	config Config

	ErrMissingConfig = errors.New("missing required configuration")

	requiredKeys = []string{"DATABASE_URL", "TOKEN_SECRET"}
)

// LoadConfig fills the package config from, in rising priority: config.yaml
// (or configFile), a .env file and the process environment.
func LoadConfig(configFile string) {
	if configFile == "" {
		configFile = "config.yaml"
	}

	config = Config{}
	if file, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(file, &config); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Error reading YAML file: %s\n", err)
	}

	_ = godotenv.Load()

	overrideFromEnv("DATABASE_URL", &config.DatabaseURL)
	overrideFromEnv("TOKEN_SECRET", &config.TokenSecret)
	overrideFromEnv("APP_PORT", &config.AppPort)
	overrideFromEnv("LOG_FILE", &config.LogFile)
	overrideFromEnv("TOKEN_TTL", &config.TokenTTL)
	overrideFromEnv("SESSION_TTL", &config.SessionTTL)
	overrideFromEnv("TELEGRAM_AUTH_MAX_AGE", &config.TelegramAuthMaxAge)
	overrideFromEnv("TELEGRAM_BOT_TOKEN", &config.TelegramBotToken)
	overrideFromEnv("AWS_S3_BUCKET", &config.AWSS3Bucket)
	overrideFromEnv("AWS_S3_REGION", &config.AWSS3Region)
	overrideFromEnv("AWS_ACCESS_KEY", &config.AWSAccessKey)
	overrideFromEnv("AWS_SECRET_KEY", &config.AWSSecretKey)
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.RateLimitMax = &n
		}
	}

	if config.AppPort == "" {
		config.AppPort = "8080"
	}
	if config.RateLimitMax == nil {
		n := defaultRateLimitMax
		config.RateLimitMax = &n
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/app.log"
	}
}

func overrideFromEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ValidateConfig reports every required key that is still empty.
func ValidateConfig() error {
	var missing []string
	for _, key := range requiredKeys {
		if GetConfig(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s in the environment, .env or config.yaml", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func GetConfig(key string) string {
	switch key {
	case "DATABASE_URL":
		return config.DatabaseURL
	case "TOKEN_SECRET":
		return config.TokenSecret
	case "APP_PORT":
		return config.AppPort
	case "RATE_LIMIT_MAX":
		if config.RateLimitMax == nil {
			return ""
		}
		return strconv.Itoa(*config.RateLimitMax)
	case "LOG_FILE":
		return config.LogFile
	case "TOKEN_TTL":
		return config.TokenTTL
	case "SESSION_TTL":
		return config.SessionTTL
	case "TELEGRAM_AUTH_MAX_AGE":
		return config.TelegramAuthMaxAge
	case "TELEGRAM_BOT_TOKEN":
		return config.TelegramBotToken
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	default:
		return ""
	}
}

// GetDuration parses a duration setting, falling back to def when it is
// unset or malformed.
func GetDuration(key string, def time.Duration) time.Duration {
	v := GetConfig(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid duration for %s: %q, using %s\n", key, v, def)
		return def
	}
	return d
}

func GetInt(key string, def int) int {
	n, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return def
	}
	return n
}
