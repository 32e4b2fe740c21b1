package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port              string
	Env               string
	LogLevel          string
	EnableDiagnostics bool

	// monday.com
	MondayAPIURL        string
	MondayAPIToken      string
	MondayBoardID       string
	MondayGroupID       string
	MondayColumnMapping string
	MondayHTTPTimeout   time.Duration
	FailoverDelay       time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Duplicate submission guard
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	DuplicateWindow time.Duration
	// DuplicateTable is a DynamoDB table used when Redis is not configured.
	DuplicateTable string

	// Delivery failure alerts
	AlertEmailTo   string
	EmailProvider  string
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		EnableDiagnostics: getEnvAsBool("ENABLE_DIAGNOSTICS", false),

		MondayAPIURL:        getEnv("MONDAY_API_URL", "https://api.monday.com/v2"),
		MondayAPIToken:      getEnv("MONDAY_API_TOKEN", ""),
		MondayBoardID:       strings.TrimSpace(getEnv("MONDAY_BOARD_ID", "")),
		MondayGroupID:       getEnv("MONDAY_GROUP_ID", "topics"),
		MondayColumnMapping: strings.TrimSpace(getEnv("MONDAY_COLUMN_MAPPING", "")),
		MondayHTTPTimeout:   getEnvAsDuration("MONDAY_HTTP_TIMEOUT", 20*time.Second),
		FailoverDelay:       getEnvAsDuration("FAILOVER_DELAY", 100*time.Millisecond),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		DuplicateWindow: getEnvAsDuration("DUPLICATE_WINDOW", 2*time.Minute),
		DuplicateTable:  strings.TrimSpace(getEnv("DUPLICATE_TABLE", "")),

		AlertEmailTo:   getEnv("ALERT_EMAIL_TO", ""),
		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "none"))),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Lead Relay"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// Validate reports configuration that would make every lead submission fail.
func (c *Config) Validate() error {
	if c.MondayBoardID != "" {
		if _, err := strconv.ParseInt(c.MondayBoardID, 10, 64); err != nil {
			return fmt.Errorf("config: MONDAY_BOARD_ID must be an integer: %w", err)
		}
	}
	if c.MondayColumnMapping != "" && !json.Valid([]byte(c.MondayColumnMapping)) {
		return fmt.Errorf("config: MONDAY_COLUMN_MAPPING is not valid JSON")
	}
	switch c.EmailProvider {
	case "", "none", "sendgrid", "ses":
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
