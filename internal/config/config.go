// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Config represents the application configuration.
type Config struct {
	ListenAddr string

	MilvusHost   string
	MilvusPort   string
	EmbeddingDim int

	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string

	ChatAPIKey  string
	ChatBaseURL string
	ChatModel   string

	DatabasePath string
	UploadDir    string

	AdminAPIKeys   string
	AllowedAPIKeys string

	ChunkMaxSize int
	ChunkOverlap int
	IndexBatch   int
	SearchTopK   int
	SearchCutoff float64
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() *Config {
	return &Config{
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		MilvusHost:   getEnvWithDefault("MILVUS_HOST", "localhost"),
		MilvusPort:   getEnvWithDefault("MILVUS_PORT", "19530"),
		EmbeddingDim: getEnvIntWithDefault("EMBEDDING_DIM", 1536),

		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingBaseURL: getEnvWithDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModel:   getEnvWithDefault("EMBEDDING_MODEL", "text-embedding-3-small"),

		ChatAPIKey:  os.Getenv("CHAT_API_KEY"),
		ChatBaseURL: getEnvWithDefault("CHAT_BASE_URL", "https://openrouter.ai/api/v1"),
		ChatModel:   getEnvWithDefault("CHAT_MODEL", "openai/gpt-4o"),

		DatabasePath: getEnvWithDefault("DATABASE_PATH", "sitedocs.db"),
		UploadDir:    getEnvWithDefault("UPLOAD_DIR", "uploads"),

		AdminAPIKeys:   os.Getenv("ADMIN_API_KEYS"),
		AllowedAPIKeys: os.Getenv("ALLOWED_API_KEYS"),

		ChunkMaxSize: getEnvIntWithDefault("CHUNK_MAX_SIZE", 800),
		ChunkOverlap: getEnvIntWithDefault("CHUNK_OVERLAP", 150),
		IndexBatch:   getEnvIntWithDefault("INDEX_BATCH_SIZE", 10),
		SearchTopK:   getEnvIntWithDefault("SEARCH_TOP_K", 15),
		SearchCutoff: getEnvFloatWithDefault("SEARCH_THRESHOLD", 0.4),
	}
}

// MilvusAddr joins the host and port for the client.
func (c *Config) MilvusAddr() string {
	return c.MilvusHost + ":" + c.MilvusPort
}

// getEnvWithDefault gets an environment variable or returns a default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
