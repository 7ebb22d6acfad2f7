package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Endpoints EndpointsConfig
	OpenAI    OpenAIConfig
	Session   SessionConfig
	Redis     RedisConfig
	Rag       RagConfig
	Policy    PolicyConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string
	Format  string
	Service string
}

// Parse modes for voice transcripts
const (
	ParseModeRemote = "remote"
	ParseModeLocal  = "local"
	ParseModeAI     = "ai"
)

// EndpointsConfig holds the two collaborator addresses
type EndpointsConfig struct {
	PredictURL   string
	ParseTextURL string
	ParseMode    string
	Timeout      int // seconds, applied to every remote call
}

// OpenAIConfig holds OpenAI-compatible API configuration for AI transcript parsing
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body
	Timeout         int
	Enabled         bool
}

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// SessionConfig holds tab-session hand-off configuration
type SessionConfig struct {
	Backend    string
	TTLMinutes int
	IntakePath string // where the result view redirects without a submission
	ResultPath string
	SweepSecs  int
}

// RedisConfig holds Redis configuration for the redis session backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RagConfig holds the retrieval-augmented chat collaborator behind /rag/ask
type RagConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// Stale voice-merge policies
const (
	StaleMergeApply   = "apply"
	StaleMergeDiscard = "discard"
)

// PolicyConfig holds behaviour switches whose defaults keep the field-tool behaviour
type PolicyConfig struct {
	StrictLabels    bool
	StaleMerge      string
	RequireComplete bool
	SpeechLang      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("LOG_SERVICE_NAME", "maternal-intake"),
		},
		Endpoints: EndpointsConfig{
			PredictURL:   getEnv("PREDICT_URL", "http://localhost:8000/predict"),
			ParseTextURL: getEnv("PARSE_TEXT_URL", "http://localhost:8000/parse-text"),
			ParseMode:    strings.ToLower(getEnv("PARSE_MODE", ParseModeRemote)),
			Timeout:      getEnvAsInt("REMOTE_TIMEOUT", 30),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.0),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.7),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 512),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 120),
			IntakePath: getEnv("INTAKE_PATH", "/assessment"),
			ResultPath: getEnv("RESULT_PATH", "/result"),
			SweepSecs:  getEnvAsInt("SESSION_SWEEP_SECONDS", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Rag: RagConfig{
			ServiceURL: getEnv("RAG_SERVICE_URL", "https://just-a-noob-maternalai-rag.hf.space/chat"),
			Timeout:    getEnvAsInt("RAG_TIMEOUT", 20),
		},
		Policy: PolicyConfig{
			StrictLabels:    getEnvAsBool("POLICY_STRICT_LABELS", false),
			StaleMerge:      strings.ToLower(getEnv("POLICY_STALE_MERGE", StaleMergeApply)),
			RequireComplete: getEnvAsBool("POLICY_REQUIRE_COMPLETE", false),
			SpeechLang:      getEnv("SPEECH_LANG", "en-IN"),
		},
	}

	return cfg, nil
}

// RemoteTimeout returns the bounded wait applied to collaborator calls
func (c *Config) RemoteTimeout() time.Duration {
	if c.Endpoints.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Endpoints.Timeout) * time.Second
}

// SessionTTL returns how long an idle tab session is kept
func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions and hand-offs are purged
func (c *Config) SweepInterval() time.Duration {
	if c.Session.SweepSecs <= 0 {
		return time.Minute
	}
	return time.Duration(c.Session.SweepSecs) * time.Second
}

// RagTimeout returns the bounded wait for the chat collaborator
func (c *Config) RagTimeout() time.Duration {
	if c.Rag.Timeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.Rag.Timeout) * time.Second
}

// AllowedOrigins splits the CORS origin list
func (c *Config) AllowedOrigins() []string {
	return splitList(c.Server.AllowedOrigins)
}

// AllowedMethods splits the CORS method list
func (c *Config) AllowedMethods() []string {
	return splitList(c.Server.AllowedMethods)
}

// AllowedHeaders splits the CORS header list
func (c *Config) AllowedHeaders() []string {
	return splitList(c.Server.AllowedHeaders)
}

// Helper functions

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
