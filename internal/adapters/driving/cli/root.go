// Package cli implements the askdoc command-line interface.
// Commands are thin shells over the core query service: they parse
// arguments, wire adapters from configuration, and render results.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/askdoc/internal/adapters/driven/ai"
	"github.com/quarry-labs/askdoc/internal/adapters/driven/config/file"
	"github.com/quarry-labs/askdoc/internal/adapters/driven/storage/postgres"
	"github.com/quarry-labs/askdoc/internal/adapters/driven/storage/sqlite"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/core/ports/driving"
	"github.com/quarry-labs/askdoc/internal/core/services"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// version is set by Execute from the build-time value in main.
var version = "dev"

// Services used by the commands. Production wiring happens lazily in
// initServices; tests inject doubles directly.
var (
	queryService     driving.QueryService
	documentStore    driven.DocumentStore
	embeddingService driven.EmbeddingService
	configStore      driven.ConfigStore
	promptStore      *file.PromptStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your documents",
	Long: `askdoc answers natural-language questions over your ingested documents.

It combines keyword (BM25) and semantic (embedding) retrieval, fuses the
two rankings, and synthesizes a grounded answer with citations. Utility
questions (summarize, translate, checklist) bypass retrieval entirely.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// initServices builds the production wiring on first use: config store,
// document store, AI providers and the orchestrator. Provider failures
// degrade rather than abort - a missing embedder means lexical-only
// retrieval, a missing LLM means fallback answers.
func initServices() error {
	if queryService != nil {
		return nil
	}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}
	promptStore = prompts

	embSettings := ai.EmbeddingSettingsFromConfig(cfg)
	embedder, err := ai.CreateAndValidateEmbeddingService(embSettings)
	if err != nil {
		logger.Warn("Embedding provider unavailable, semantic search disabled: %v", err)
		embedder = nil
	}
	if embedder != nil {
		embedder = ai.NewCachedEmbedding(
			ai.NewRateLimitedEmbedding(embedder, ai.DefaultEmbeddingRateLimit),
			ai.DefaultCacheSize,
		)
	}
	embeddingService = embedder

	llm, err := ai.CreateAndValidateLLMService(ai.LLMSettingsFromConfig(cfg))
	if err != nil {
		logger.Warn("LLM provider unavailable, answers will be fallbacks: %v", err)
		llm = nil
	}
	if llm != nil {
		llm = ai.NewRateLimitedLLM(llm, ai.DefaultLLMRateLimit)
	}

	store, searcher, err := openDocumentStore(cfg, embSettings)
	if err != nil {
		return err
	}
	documentStore = store

	orch := services.NewOrchestrator(store, embedder, llm)
	orch.SetPromptStore(prompts)
	if searcher != nil {
		orch.SetVectorSearcher(searcher)
	}
	if k := cfg.GetInt("retrieval.top_k"); k > 0 {
		orch.SetTopK(k)
	}
	if _, ok := cfg.Get("retrieval.fusion_weight"); ok {
		orch.SetFusionWeight(cfg.GetFloat("retrieval.fusion_weight"))
	}
	if langs := cfg.GetStringSlice("languages"); len(langs) == 2 {
		orch.SetLanguages(langs[0], langs[1])
	}

	queryService = orch
	return nil
}

// openDocumentStore selects the storage backend from config. SQLite is
// the default; "postgres" additionally provides delegated vector search.
func openDocumentStore(cfg driven.ConfigStore, emb *ai.EmbeddingSettings) (driven.DocumentStore, driven.VectorSearcher, error) {
	switch backend := cfg.GetString("storage.backend"); backend {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil, nil

	case "postgres":
		dims := emb.Dimensions
		if dims <= 0 {
			return nil, nil, fmt.Errorf("postgres backend requires embedding.dimensions in config")
		}
		store, err := postgres.NewStore(rootCmd.Context(), cfg.GetString("storage.postgres_dsn"), dims)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (expected sqlite or postgres)", backend)
	}
}
