package main

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/server"
	"github.com/finsight-ai/finsight/internal/server/middleware"
	"github.com/finsight-ai/finsight/internal/util"
	"github.com/finsight-ai/finsight/pkg/ai"
	oai "github.com/finsight-ai/finsight/pkg/ai/ollama"
	gai "github.com/finsight-ai/finsight/pkg/ai/openai"
	"github.com/finsight-ai/finsight/pkg/kg"
	"github.com/finsight-ai/finsight/pkg/logger"
	"github.com/finsight-ai/finsight/pkg/logger/console"
	"github.com/finsight-ai/finsight/pkg/store"
	storepgx "github.com/finsight-ai/finsight/pkg/store/pgx"
	"github.com/finsight-ai/finsight/pkg/textsql"
)

const graphID = "default"

func main() {
	util.LoadEnv()
	cfg := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg.Debug,
	})
	logger.Init(consoleLogger)

	ctx := context.Background()

	aiClient := newAIClient(cfg)

	db, dialect := openDatabase(cfg.DatabaseURL)
	defer db.Close()

	sqlEngine := textsql.NewEngine(textsql.NewEngineParams{
		Client:  aiClient,
		DB:      db,
		Dialect: dialect,
	})
	if err := sqlEngine.CreateFinancialTables(ctx); err != nil {
		logger.Fatal("Failed to create financial tables", "err", err)
	}

	chunker, err := kg.NewChunker(kg.ChunkerParams{
		Size:      cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
		MaxTokens: cfg.ChunkMaxTokens,
		Encoder:   cfg.TokenEncoder,
	})
	if err != nil {
		logger.Fatal("Failed to create chunker", "err", err)
	}

	graph := kg.NewGraph()
	builder := kg.NewBuilder(kg.NewBuilderParams{
		Client:              aiClient,
		Chunker:             chunker,
		Extractor:           kg.NewExtractor(kg.NewExtractorParams{Client: aiClient}),
		ParallelExtractions: cfg.ParallelExtractions,
		MaxRetries:          cfg.MaxRetries,
	})

	app := &middleware.App{
		Graph:   graph,
		Builder: builder,
		Query:   kg.NewQueryEngine(kg.NewQueryEngineParams{Client: aiClient, Graph: graph}),
		SQL:     sqlEngine,
		GraphID: graphID,
	}

	if cfg.GraphStoreURL != "" {
		pool := openGraphStore(ctx, cfg.GraphStoreURL)
		defer pool.Close()
		app.GraphStore = storepgx.NewStore(pool)

		snapshot, err := app.GraphStore.LoadGraph(ctx, graphID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.Info("No persisted graph found, starting empty")
		case err != nil:
			logger.Fatal("Failed to load persisted graph", "err", err)
		default:
			app.Graph = kg.FromSnapshot(snapshot)
			app.Query = kg.NewQueryEngine(kg.NewQueryEngineParams{Client: aiClient, Graph: app.Graph})
			logger.Info("Loaded persisted graph",
				"nodes", app.Graph.NodeCount(), "edges", app.Graph.EdgeCount())
		}
	}

	server.Run(app, cfg.ListenAddr)
}

func newAIClient(cfg config.Config) ai.Client {
	switch cfg.AIProvider {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			ChatModel:       cfg.ChatModel,
			ExtractionModel: cfg.ExtractionModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			EmbedDim:        cfg.EmbedDim,
			TimeoutMin:      cfg.TimeoutMin,

			BaseURL: cfg.OllamaURL,

			MaxConcurrentRequests: int64(cfg.ParallelExtractions),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			ChatModel:       cfg.ChatModel,
			ExtractionModel: cfg.ExtractionModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			EmbedDim:        cfg.EmbedDim,
			TimeoutMin:      cfg.TimeoutMin,

			BaseURL: cfg.OpenAIURL,
			APIKey:  cfg.OpenAIKey,

			MaxConcurrentRequests: int64(cfg.ParallelExtractions),
		})
	}
}

func openDatabase(databaseURL string) (*sql.DB, textsql.Dialect) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		db, err := sql.Open("pgx", databaseURL)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		return db, textsql.DialectPostgres
	}

	db, err := sql.Open("sqlite", databaseURL)
	if err != nil {
		logger.Fatal("Unable to open database", "err", err)
	}
	return db, textsql.DialectSQLite
}

func openGraphStore(ctx context.Context, storeURL string) *pgxpool.Pool {
	if err := storepgx.Migrate(storeURL); err != nil {
		logger.Fatal("Failed to migrate graph store", "err", err)
	}

	poolCfg, err := pgxpool.ParseConfig(storeURL)
	if err != nil {
		logger.Fatal("Invalid graph store URL", "err", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Unable to connect to graph store", "err", err)
	}
	return pool
}
