package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Extractor ExtractorConfig
	Sheet     SheetConfig
	Media     MediaConfig
	Chat      ChatConfig
	Paths     PathsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ExtractorConfig holds vision-extraction configuration
type ExtractorConfig struct {
	Backend      string // "openai" or "gemini"
	APIKey       string
	BaseURL      string
	Model        string
	GeminiAPIKey string
	GeminiModel  string
	MaxTokens    int
	Timeout      time.Duration
}

// SheetConfig holds spreadsheet sink configuration
type SheetConfig struct {
	WorkbookPath string
	TabName      string
}

// MediaConfig holds media-group aggregation timing
type MediaConfig struct {
	MaxWait       time.Duration
	PollInterval  time.Duration
	IdleThreshold time.Duration
}

// ChatConfig holds chat transport limits
type ChatConfig struct {
	MaxMessageLength int
}

// PathsConfig holds data file locations
type PathsConfig struct {
	CategoriesPath string
	PrefsPath      string
	AuditDir       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Extractor: ExtractorConfig{
			Backend:      getEnv("EXTRACTOR_BACKEND", "openai"),
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:        getEnv("OPENAI_MODEL", "gpt-4o"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			MaxTokens:    getEnvAsInt("EXTRACTOR_MAX_TOKENS", 4000),
			Timeout:      getEnvAsDuration("EXTRACTOR_TIMEOUT", 45*time.Second),
		},
		Sheet: SheetConfig{
			WorkbookPath: getEnv("XLSX_PATH", ""),
			TabName:      getEnv("XLSX_TAB_NAME", "receipts"),
		},
		Media: MediaConfig{
			MaxWait:       getEnvAsDuration("MEDIA_GROUP_MAX_WAIT", 3*time.Second),
			PollInterval:  getEnvAsDuration("MEDIA_GROUP_POLL_INTERVAL", 500*time.Millisecond),
			IdleThreshold: getEnvAsDuration("MEDIA_GROUP_IDLE_THRESHOLD", time.Second),
		},
		Chat: ChatConfig{
			MaxMessageLength: getEnvAsInt("MAX_MESSAGE_LENGTH", 4000),
		},
		Paths: PathsConfig{
			CategoriesPath: getEnv("CATEGORIES_PATH", "data/receipt_categories.yaml"),
			PrefsPath:      getEnv("PREFS_PATH", "data/preferences.db"),
			AuditDir:       getEnv("AUDIT_DIR", "output/receipts_csv"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. Startup must abort on error.
func (c *Config) Validate() error {
	switch c.Extractor.Backend {
	case "openai":
		if c.Extractor.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "gemini":
		if c.Extractor.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "EXTRACTOR_BACKEND must be openai or gemini", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Chat.MaxMessageLength < 500 {
		return NewAppError("CONFIG_ERROR", "MAX_MESSAGE_LENGTH is too small", ErrInvalidInput)
	}
	return nil
}
