package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
	Logging   LoggingConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	retrieval, err := loadRetrievalConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Retrieval: retrieval,
		Chat:      chat,
		Logging:   loadLoggingConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	origins := []string{"http://localhost:3000", "http://localhost:3001"}
	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins}, nil
}

// AIConfig describes the chat model used for answer generation.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	// ContextTopK is how many passages the generator folds into its prompt.
	ContextTopK int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	contextTopK := 5
	if override, err := parseOptionalIntEnv("AI_CONTEXT_TOP_K"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		contextTopK = *override
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		ContextTopK: contextTopK,
	}, nil
}

// RetrievalConfig describes the vector index and embeddings backends.
type RetrievalConfig struct {
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	TimeoutSecs      int
}

func loadRetrievalConfig() (RetrievalConfig, error) {
	timeout := 30
	if override, err := parseOptionalIntEnv("RETRIEVAL_TIMEOUT"); err != nil {
		return RetrievalConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = *override
	}

	return RetrievalConfig{
		QdrantURL:        getEnvOrDefault("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     strings.TrimSpace(os.Getenv("QDRANT_API_KEY")),
		QdrantCollection: getEnvOrDefault("QDRANT_COLLECTION", "docs"),
		EmbeddingBaseURL: getEnvOrDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  strings.TrimSpace(os.Getenv("EMBEDDING_API_KEY")),
		EmbeddingModel:   getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		TimeoutSecs:      timeout,
	}, nil
}

// ChatConfig bounds conversation memory and citations.
type ChatConfig struct {
	// HistoryWindow is how many recent turns the generator sees.
	HistoryWindow int
	// RetentionLimit caps the turns kept per conversation; oldest are evicted.
	RetentionLimit int
	// SourceTopK caps the passages retrieved for citations and confidence.
	SourceTopK int
}

func loadChatConfig() (ChatConfig, error) {
	cfg := ChatConfig{HistoryWindow: 6, RetentionLimit: 20, SourceTopK: 3}

	if override, err := parseOptionalIntEnv("CHAT_HISTORY_WINDOW"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		cfg.HistoryWindow = *override
	}

	if override, err := parseOptionalIntEnv("CHAT_RETENTION_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		cfg.RetentionLimit = *override
	}

	if override, err := parseOptionalIntEnv("CHAT_SOURCE_TOP_K"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		cfg.SourceTopK = *override
	}

	return cfg, nil
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string
	Encoding    string
	Development bool
}

func loadLoggingConfig() LoggingConfig {
	dev := false
	if raw := strings.TrimSpace(os.Getenv("LOG_DEVELOPMENT")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			dev = v
		}
	}
	return LoggingConfig{
		Level:       getEnvOrDefault("LOG_LEVEL", "info"),
		Encoding:    getEnvOrDefault("LOG_ENCODING", "console"),
		Development: dev,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
