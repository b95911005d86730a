package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
}

// DatabaseConfig holds database-related configuration. An empty DSN with
// InMemory set runs against an embedded sqlite database.
type DatabaseConfig struct {
	DSN              string
	InMemory         bool
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr   string
	MaxImageMB int
}

// OCRConfig holds local tesseract settings
type OCRConfig struct {
	TesseractPath string
	TessdataDir   string
	Languages     string
	PSM           int
	Timeout       time.Duration
}

// LLMConfig holds model provider configuration
type LLMConfig struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	StageTimeout time.Duration
	MaxRetries   int
	RulesPath    string
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory, if any, is applied first without overriding the process env.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config.dotenv.load_failed", "err", err)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			InMemory:         getEnvAsBool("DB_INMEM", false),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:   getEnv("GRPC_ADDR", ":8080"),
			MaxImageMB: getEnvAsInt("MAX_IMAGE_MB", 10),
		},
		OCR: OCRConfig{
			TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Languages:     getEnv("OCR_LANGS", "eng"),
			PSM:           getEnvAsInt("OCR_PSM", 6),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Provider:     provider,
			Model:        getEnv("LLM_MODEL", defaultModel(provider)),
			APIKey:       getEnv("LLM_API_KEY", providerKey(provider)),
			BaseURL:      getEnv("LLM_BASE_URL", ""),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1024),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			StageTimeout: getEnvAsDuration("LLM_STAGE_TIMEOUT", 45*time.Second),
			MaxRetries:   getEnvAsInt("LLM_MAX_RETRIES", 0),
			RulesPath:    getEnv("LLM_RULES_PATH", ""),
		},
	}
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}

func providerKey(provider string) string {
	if provider == "gemini" {
		return os.Getenv("GEMINI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	if c.Database.DSN == "" && !c.Database.InMemory {
		return NewAppError("CONFIG_ERROR", "DB_URL is required unless DB_INMEM is set", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return c.LLM.Validate()
}

// Validate checks provider settings. It is separate so offline tools can skip it.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "openai", "gemini":
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	if c.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLM_API_KEY (or the provider key) is required", ErrInvalidInput)
	}
	if c.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "LLM_MAX_RETRIES must be >= 0", ErrInvalidInput)
	}
	return nil
}
