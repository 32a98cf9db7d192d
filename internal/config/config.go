package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	Supabase  SupabaseConfig
	Gemini    GeminiConfig
	Groq      GroqConfig
	Embedding EmbeddingConfig
	Retrieval RetrievalConfig
	Docs      DocsConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// SupabaseConfig points at the storage bucket that persists serialized
// knowledge stores.
type SupabaseConfig struct {
	URL    string
	Key    string
	Bucket string
}

type GeminiConfig struct {
	APIKey string
	// Model answers quiz/summary generation; WebModel is used for
	// web-grounded search completions.
	Model    string
	WebModel string
}

// GroqConfig configures the OpenAI-compatible chat completion backend
// used by the retrieval-augmented answerer.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type EmbeddingConfig struct {
	Source   string
	CacheTTL time.Duration
	OpenAI   OpenAIEmbeddingConfig
	Ollama   OllamaEmbeddingConfig
}

type OpenAIEmbeddingConfig struct {
	APIKey string
	Model  string
}

type OllamaEmbeddingConfig struct {
	ServerURL string
	Model     string
}

// RetrievalConfig tunes chunking, similarity retrieval and the textual
// fallback heuristic.
type RetrievalConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	// MinScore is advisory retrieval metadata; matches below it are
	// still returned (see knowledge.Store.Query).
	MinScore float64
	// FallbackPhrases trigger web fallback when found in an answer
	// (case-insensitive substring match).
	FallbackPhrases []string
}

type DocsConfig struct {
	WebhookURL string
}

// DefaultFallbackPhrases are the insufficiency markers the answer prompt
// instructs the model to emit.
var DefaultFallbackPhrases = []string{
	"i don't have info",
	"i do not have info",
	"i can only assist you with the information of file uploaded",
	"not present in the document",
	"not available in the provided content",
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Supabase: SupabaseConfig{
			URL:    viper.GetString("supabase.url"),
			Key:    viper.GetString("supabase.key"),
			Bucket: viper.GetString("supabase.bucket"),
		},
		Gemini: GeminiConfig{
			APIKey:   viper.GetString("gemini.api_key"),
			Model:    viper.GetString("gemini.model"),
			WebModel: viper.GetString("gemini.web_model"),
		},
		Groq: GroqConfig{
			APIKey:  viper.GetString("groq.api_key"),
			Model:   viper.GetString("groq.model"),
			BaseURL: viper.GetString("groq.base_url"),
		},
		Embedding: EmbeddingConfig{
			Source:   viper.GetString("embedding.source"),
			CacheTTL: viper.GetDuration("embedding.cache_ttl"),
			OpenAI: OpenAIEmbeddingConfig{
				APIKey: viper.GetString("embedding.openai.api_key"),
				Model:  viper.GetString("embedding.openai.model"),
			},
			Ollama: OllamaEmbeddingConfig{
				ServerURL: viper.GetString("embedding.ollama.server_url"),
				Model:     viper.GetString("embedding.ollama.model"),
			},
		},
		Retrieval: RetrievalConfig{
			ChunkSize:       viper.GetInt("retrieval.chunk_size"),
			ChunkOverlap:    viper.GetInt("retrieval.chunk_overlap"),
			TopK:            viper.GetInt("retrieval.top_k"),
			MinScore:        viper.GetFloat64("retrieval.min_score"),
			FallbackPhrases: viper.GetStringSlice("retrieval.fallback_phrases"),
		},
		Docs: DocsConfig{
			WebhookURL: viper.GetString("docs.webhook_url"),
		},
	}

	// Environment overrides for secrets
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		config.Groq.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Embedding.OpenAI.APIKey = key
	}
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		config.Supabase.URL = url
	}
	if key := os.Getenv("SUPABASE_KEY"); key != "" {
		config.Supabase.Key = key
	}
	if bucket := os.Getenv("SUPABASE_BUCKET"); bucket != "" {
		config.Supabase.Bucket = bucket
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}

	if len(config.Retrieval.FallbackPhrases) == 0 {
		config.Retrieval.FallbackPhrases = DefaultFallbackPhrases
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 60)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("supabase.bucket", "vector-db")
	viper.SetDefault("gemini.model", "gemini-2.5-flash-lite")
	viper.SetDefault("gemini.web_model", "gemini-2.0-flash-lite")
	viper.SetDefault("groq.model", "llama-3.1-8b-instant")
	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("embedding.source", "ollama")
	viper.SetDefault("embedding.cache_ttl", 168*time.Hour)
	viper.SetDefault("embedding.ollama.server_url", "http://localhost:11434")
	viper.SetDefault("embedding.ollama.model", "nomic-embed-text")
	viper.SetDefault("embedding.openai.model", "text-embedding-3-small")
	viper.SetDefault("retrieval.chunk_size", 500)
	viper.SetDefault("retrieval.chunk_overlap", 0)
	viper.SetDefault("retrieval.top_k", 2)
	viper.SetDefault("retrieval.min_score", 0.5)
}
