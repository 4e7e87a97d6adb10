package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KnowledgeBaseID string

	OllamaURL       string
	GenerationModel string
	EmbeddingModel  string

	ArchiveGatewayURL string
	ArchiveBucket     string
	DefaultOutlet     string
	DocumentCacheSize int

	WebSearchURL    string
	WebSearchAPIKey string

	AttemptBudget    int
	RetrievalK       int
	DateRelevanceMin float64
	SourceFloor      int
	AnswerMaxTokens  int
	GenerationMode   string
	AppendMarkers    bool
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "newsqa-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "newsqa_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "newsqa_password"),
		DBName:     getEnv("DB_NAME", "newsqa_db"),

		KnowledgeBaseID: getEnv("KNOWLEDGE_BASE_ID", ""),

		OllamaURL:       getEnv("OLLAMA_URL", "http://augur-external:11434"),
		GenerationModel: getEnv("GENERATION_MODEL", "gpt-oss20b-cpu"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "embeddinggemma"),

		ArchiveGatewayURL: getEnv("ARCHIVE_GATEWAY_URL", "http://archive-gateway:9000"),
		ArchiveBucket:     getEnv("ARCHIVE_BUCKET", "news-archive"),
		DefaultOutlet:     getEnv("DEFAULT_OUTLET", "연합뉴스"),
		DocumentCacheSize: getEnvInt("DOCUMENT_CACHE_SIZE", 128),

		WebSearchURL:    getEnv("WEB_SEARCH_URL", "https://api.perplexity.ai"),
		WebSearchAPIKey: getSecret("WEB_SEARCH_API_KEY", "WEB_SEARCH_API_KEY_FILE", ""),

		AttemptBudget:    getEnvInt("QA_ATTEMPT_BUDGET", 3),
		RetrievalK:       getEnvInt("QA_RETRIEVAL_K", 5),
		DateRelevanceMin: getEnvFloat("QA_DATE_RELEVANCE_MIN", 0.6),
		SourceFloor:      getEnvInt("QA_SOURCE_FLOOR", 3),
		AnswerMaxTokens:  getEnvInt("QA_ANSWER_MAX_TOKENS", 1000),
		GenerationMode:   getEnv("QA_GENERATION_MODE", "direct"),
		AppendMarkers:    getEnvBool("QA_APPEND_MARKERS", false),
	}
}

// Validate reports configuration the service cannot start without.
func (c *Config) Validate() error {
	if c.KnowledgeBaseID == "" {
		return fmt.Errorf("KNOWLEDGE_BASE_ID is required")
	}
	return nil
}

// DSN assembles the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
