package config

import (
	"github.com/finsight-ai/finsight/internal/util"
)

// Config holds the runtime configuration for the analysis engine. All values
// are read from the environment; a .env file is honored when present.
type Config struct {
	Debug bool

	// AI provider selection: "openai" or "ollama".
	AIProvider string

	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string
	EmbedDim        int

	OpenAIKey  string
	OpenAIURL  string
	OllamaURL  string
	TimeoutMin int

	// Relational store for the NL-to-SQL engine. The driver is selected from
	// the URL scheme: "postgres://..." uses pgx, anything else is treated as
	// a SQLite path.
	DatabaseURL string

	// Optional graph persistence (PostgreSQL + pgvector). Empty disables it.
	GraphStoreURL string

	ChunkSize      int
	ChunkOverlap   int
	ChunkMaxTokens int
	TokenEncoder   string

	ParallelExtractions int
	MaxRetries          int

	ListenAddr string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Debug: util.GetEnvBool("DEBUG", false),

		AIProvider: util.GetEnvString("AI_PROVIDER", "openai"),

		ChatModel:       util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini"),
		ExtractionModel: util.GetEnvString("AI_EXTRACTION_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  util.GetEnvString("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbedDim:        int(util.GetEnvNumeric("AI_EMBED_DIM", 1536)),

		OpenAIKey:  util.GetEnvString("OPENAI_API_KEY", ""),
		OpenAIURL:  util.GetEnvString("OPENAI_BASE_URL", ""),
		OllamaURL:  util.GetEnvString("OLLAMA_URL", "http://localhost:11434"),
		TimeoutMin: int(util.GetEnvNumeric("AI_TIMEOUT_MIN", 5)),

		DatabaseURL:   util.GetEnvString("DATABASE_URL", "finsight.db"),
		GraphStoreURL: util.GetEnvString("GRAPH_STORE_URL", ""),

		ChunkSize:      int(util.GetEnvNumeric("CHUNK_SIZE", 1000)),
		ChunkOverlap:   int(util.GetEnvNumeric("CHUNK_OVERLAP", 200)),
		ChunkMaxTokens: int(util.GetEnvNumeric("CHUNK_MAX_TOKENS", 600)),
		TokenEncoder:   util.GetEnvString("TOKEN_ENCODER", "o200k_base"),

		ParallelExtractions: int(util.GetEnvNumeric("PARALLEL_EXTRACTIONS", 4)),
		MaxRetries:          int(util.GetEnvNumeric("MAX_RETRIES", 3)),

		ListenAddr: util.GetEnvString("LISTEN_ADDR", ":8080"),
	}
}
