package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Notification dispatch
	NotifyWorkers int
	NotifyTimeout time.Duration

	// Event finalization sweep
	SweepCron      string
	SweepBatchSize int

	// Mail sender fallbacks, used when the app settings carry none
	SenderName    string
	SenderAddress string

	// Rate limiting
	SignupRateLimit  int
	SignupRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Notifications
		NotifyWorkers: getEnvAsInt("NOTIFY_WORKERS", 2),
		NotifyTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", "30s"),

		// Sweep
		SweepCron:      getEnv("SWEEP_CRON", "*/5 * * * *"),
		SweepBatchSize: getEnvAsInt("SWEEP_BATCH_SIZE", 1000),

		// Mail
		SenderName:    getEnv("MAIL_SENDER_NAME", "MeetMaster"),
		SenderAddress: getEnv("MAIL_SENDER_ADDRESS", "noreply@meetmaster.local"),

		// Rate limiting
		SignupRateLimit:  getEnvAsInt("SIGNUP_RATE_LIMIT", 10),
		SignupRateWindow: getEnvAsDuration("SIGNUP_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
