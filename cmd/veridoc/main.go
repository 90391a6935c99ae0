// Command veridoc is a local document question-answering tool.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	configfile "github.com/veridoc-labs/veridoc/internal/adapters/driven/config/file"
	ollamaembed "github.com/veridoc-labs/veridoc/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/veridoc-labs/veridoc/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/veridoc-labs/veridoc/internal/adapters/driven/llm/ollama"
	openaillm "github.com/veridoc-labs/veridoc/internal/adapters/driven/llm/openai"
	memstore "github.com/veridoc-labs/veridoc/internal/adapters/driven/storage/memory"
	"github.com/veridoc-labs/veridoc/internal/adapters/driven/storage/sqlite"
	chromemindex "github.com/veridoc-labs/veridoc/internal/adapters/driven/vector/chromem"
	memvector "github.com/veridoc-labs/veridoc/internal/adapters/driven/vector/memory"
	"github.com/veridoc-labs/veridoc/internal/adapters/driving/cli"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/core/services"
	"github.com/veridoc-labs/veridoc/internal/extractors"
	"github.com/veridoc-labs/veridoc/internal/extractors/docx"
	"github.com/veridoc-labs/veridoc/internal/extractors/markdown"
	"github.com/veridoc-labs/veridoc/internal/extractors/pdf"
	"github.com/veridoc-labs/veridoc/internal/extractors/plaintext"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.SetVersion(version)

	cfg, err := configfile.NewConfigStore(os.Getenv("VERIDOC_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	app, err := buildApp(cfg)
	if err != nil {
		return fmt.Errorf("initialise services: %w", err)
	}
	defer app.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.pool.Start(ctx)
	defer app.pool.Stop()

	cli.SetServices(app.ask, app.library)
	cli.SetProcessingWaiter(app.pool)

	return cli.Execute()
}

// app holds the wired service graph and the resources it owns.
type app struct {
	ask     *services.AnswerService
	library *services.Library
	pool    *services.WorkerPool
	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Close: %v", err)
		}
	}
}

// buildApp wires adapters and services from configuration.
func buildApp(cfg driven.ConfigStore) (*app, error) {
	a := &app{}

	dataDir := cfg.GetString("storage.data_dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".veridoc", "data")
	}

	docStore, vectorIndex, err := buildStores(cfg, dataDir, a)
	if err != nil {
		return nil, err
	}

	embeddingService, err := buildEmbedding(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, embeddingService.Close)

	llmService, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, llmService.Close)

	registry := buildExtractors()

	promptStore, err := configfile.NewPromptStore(cfg.GetString("prompts.dir"))
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	var retrieverOpts []services.RetrieverOption
	if limit := cfg.GetInt("retrieval.limit"); limit > 0 {
		retrieverOpts = append(retrieverOpts, services.WithRetrieveLimit(limit))
	}
	if maxDistance := cfg.GetFloat("retrieval.max_distance"); maxDistance > 0 {
		retrieverOpts = append(retrieverOpts, services.WithMaxDistance(maxDistance))
	}

	assembler := services.NewPromptAssembler()
	assembler.SetPromptStore(promptStore)

	mirror := services.NewChunkMirror(docStore, vectorIndex)
	retriever := services.NewRetriever(docStore, vectorIndex, embeddingService, retrieverOpts...)
	pipeline := services.NewPipeline(docStore, registry, embeddingService, mirror)

	workers := cfg.GetInt("processing.workers")
	if workers <= 0 {
		workers = 2
	}
	a.pool = services.NewWorkerPool(workers)

	var libraryOpts []services.LibraryOption
	if retries := cfg.GetInt("processing.retries"); retries > 0 {
		libraryOpts = append(libraryOpts, services.WithProcessingRetries(retries, 5*time.Second))
	}

	a.library = services.NewLibrary(docStore, registry, mirror, pipeline, a.pool, libraryOpts...)
	a.ask = services.NewAnswerService(retriever, assembler, services.NewCitationExtractor(), llmService, docStore)

	return a, nil
}

// buildStores selects the persistence backend. The default pairs SQLite
// chunk rows with a persistent chromem index; "memory" keeps both
// in-process for trials and tests.
func buildStores(cfg driven.ConfigStore, dataDir string, a *app) (driven.DocumentStore, driven.VectorIndex, error) {
	backend := cfg.GetString("storage.backend")
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "sqlite":
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open document store: %w", err)
		}
		a.closers = append(a.closers, store.Close)

		index, err := chromemindex.NewIndex(chromemindex.Config{
			Path:     filepath.Join(dataDir, "index"),
			Compress: cfg.GetBool("storage.compress_index"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open vector index: %w", err)
		}
		a.closers = append(a.closers, index.Close)

		return store, index, nil

	case "memory":
		return memstore.NewDocumentStore(), memvector.NewIndex(), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func buildEmbedding(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil

	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            openAIKey(cfg),
			BaseURL:           cfg.GetString("embedding.base_url"),
			Model:             cfg.GetString("embedding.model"),
			Dimensions:        cfg.GetInt("embedding.dimensions"),
			RequestsPerMinute: cfg.GetInt("openai.requests_per_minute"),
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

func buildLLM(cfg driven.ConfigStore) (driven.LLMService, error) {
	provider := cfg.GetString("llm.provider")
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		}), nil

	case "openai":
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  openAIKey(cfg),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})

	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

func openAIKey(cfg driven.ConfigStore) string {
	if key := cfg.GetString("openai.api_key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

func buildExtractors() *extractors.Registry {
	registry := extractors.NewRegistry(
		plaintext.New(),
		markdown.New(),
		docx.New(),
	)

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("PDF support disabled: %v\n%s", err, pdf.InstallInstructions())
	} else {
		registry.Register(pdf.New())
	}

	return registry
}
