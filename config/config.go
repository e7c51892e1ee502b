package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Admin     AdminConfig
	AI        AIConfig
	Realtime  RealtimeConfig
	Payment   PaymentConfig
	S3        S3Config
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// StorageConfig selects the durable slot backend.
type StorageConfig struct {
	Driver     string // postgres, sqlite, redis, badger, memory
	Database   DatabaseConfig
	SQLitePath string
	BadgerPath string
	KeyPrefix  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Timeout  time.Duration
}

type AdminConfig struct {
	Passcode     string
	PasscodeHash string
	TokenSecret  string
	TokenExpiry  time.Duration
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type RealtimeConfig struct {
	URL              string
	APIKey           string
	Model            string
	Voice            string
	Instructions     string
	InputSampleRate  int
	OutputSampleRate int
	ConnectTimeout   time.Duration
	SendQueueSize    int
	MaxSessions      int
}

type PaymentConfig struct {
	PublishableKey string
	SecretKey      string
	BaseURL        string
	Currency       string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type SchedulerConfig struct {
	RestockCron      string
	CompactionCron   string
	ViewLogRetention time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "postgres"),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "admin"),
				Password: getEnv("DB_PASSWORD", "1234"),
				DBName:   getEnv("DB_NAME", "maison"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
			SQLitePath: getEnv("SQLITE_PATH", "maison.db"),
			BadgerPath: getEnv("BADGER_PATH", "data/badger"),
			KeyPrefix:  getEnv("STORAGE_KEY_PREFIX", "maison:"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			Timeout:  parseDuration(getEnv("REDIS_TIMEOUT", "5s"), 5*time.Second),
		},
		Admin: AdminConfig{
			Passcode:     getEnv("ADMIN_PASSCODE", ""),
			PasscodeHash: getEnv("ADMIN_PASSCODE_HASH", ""),
			TokenSecret:  getEnv("ADMIN_TOKEN_SECRET", "your-secret-key"),
			TokenExpiry:  parseDuration(getEnv("ADMIN_TOKEN_EXPIRY", "8h"), 8*time.Hour),
		},
		AI: AIConfig{
			APIKey:  getEnv("AI_API_KEY", ""),
			BaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
			Timeout: parseDuration(getEnv("AI_TIMEOUT", "30s"), 30*time.Second),
		},
		Realtime: RealtimeConfig{
			URL:              getEnv("REALTIME_URL", ""),
			APIKey:           getEnv("REALTIME_API_KEY", ""),
			Model:            getEnv("REALTIME_MODEL", "native-audio"),
			Voice:            getEnv("REALTIME_VOICE", "Kore"),
			Instructions:     getEnv("REALTIME_INSTRUCTIONS", "You are the Maison concierge. Help clients with styling, sizing and orders. Be warm and concise."),
			InputSampleRate:  parseInt(getEnv("REALTIME_INPUT_SAMPLE_RATE", "16000"), 16000),
			OutputSampleRate: parseInt(getEnv("REALTIME_OUTPUT_SAMPLE_RATE", "24000"), 24000),
			ConnectTimeout:   parseDuration(getEnv("REALTIME_CONNECT_TIMEOUT", "15s"), 15*time.Second),
			SendQueueSize:    parseInt(getEnv("REALTIME_SEND_QUEUE_SIZE", "32"), 32),
			MaxSessions:      parseInt(getEnv("REALTIME_MAX_SESSIONS", "50"), 50),
		},
		Payment: PaymentConfig{
			PublishableKey: getEnv("PAYMENT_PUBLISHABLE_KEY", ""),
			SecretKey:      getEnv("PAYMENT_SECRET_KEY", ""),
			BaseURL:        getEnv("PAYMENT_BASE_URL", "https://api.paystack.co"),
			Currency:       getEnv("PAYMENT_CURRENCY", "USD"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-west-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "maison-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			RestockCron:      getEnv("RESTOCK_CRON", "*/15 * * * *"),
			CompactionCron:   getEnv("COMPACTION_CRON", "0 3 * * *"),
			ViewLogRetention: parseDuration(getEnv("VIEW_LOG_RETENTION", "720h"), 720*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	if config.Admin.Passcode == "" && config.Admin.PasscodeHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSCODE or ADMIN_PASSCODE_HASH must be set")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
