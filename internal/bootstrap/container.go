package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"cdc-educa-be/internal/config"
	"cdc-educa-be/internal/controller"
	"cdc-educa-be/internal/pkg/logger"
	"cdc-educa-be/internal/repository/unitofwork"
	"cdc-educa-be/internal/service"
	"cdc-educa-be/pkg/audit"
	"cdc-educa-be/pkg/embedding"
	"cdc-educa-be/pkg/guardrail"
	"cdc-educa-be/pkg/llm/factory"
	"cdc-educa-be/pkg/pipeline"
	"cdc-educa-be/pkg/rag/draft"
	"cdc-educa-be/pkg/rag/polish"
	"cdc-educa-be/pkg/rag/search"
	"cdc-educa-be/pkg/store"

	pktNats "cdc-educa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController controller.IAskController

	// Background Services (Exposed for main.go to run)
	QALogConsumerService service.IQALogConsumerService
}

// searcherAdapter binds the corpus searcher to the pipeline's retrieval
// port: each search runs on a fresh unit of work.
type searcherAdapter struct {
	uowFactory unitofwork.RepositoryFactory
	searcher   *search.Searcher
	config     search.Config
}

func (a *searcherAdapter) Search(ctx context.Context, query string, k int) ([]store.SourceHit, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	return a.searcher.Execute(ctx, uow, query, k, a.config)
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Corpus integrity gate: refuse to start on a corrupted index
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := search.CheckIntegrity(ctx, uowFactory.NewUnitOfWork(ctx)); err != nil {
		return nil, err
	}

	// 5. NATS fan-out (best effort, service runs without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 6. Pipeline assembly
	pipelineLog := log.Default()
	searchConfig := search.Config{
		DBThreshold: 0.0,
		TopKDefault: cfg.Pipeline.TopKDefault,
		MaxTopK:     cfg.Pipeline.MaxTopK,
	}

	orchestrator := pipeline.NewOrchestrator(
		guardrail.NewInputGuard(pipelineLog),
		guardrail.NewScopeClassifier(llmProvider, pipelineLog),
		&searcherAdapter{
			uowFactory: uowFactory,
			searcher:   search.NewSearcher(embeddingProvider, pipelineLog),
			config:     searchConfig,
		},
		draft.NewGenerator(llmProvider, pipelineLog),
		audit.NewAuditor(llmProvider, pipelineLog),
		polish.NewRefiner(llmProvider, pipelineLog),
		pipelineLog,
	)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Pipeline.QATopic, pubSub)
	askService := service.NewAskService(
		uowFactory,
		orchestrator,
		publisherService,
		time.Duration(cfg.Pipeline.AnswerCacheTTL)*time.Second,
		cfg.Pipeline.MaxRetries,
		sysLogger,
	)

	qaLogger := logger.NewIsolatedLogger(cfg.App.QALogFilePath)
	qaLogConsumer := service.NewQALogConsumerService(
		pubSub,
		cfg.Pipeline.QATopic,
		uowFactory,
		natsPub,
		qaLogger,
	)

	// 8. Controllers
	return &Container{
		AskController:        controller.NewAskController(askService),
		QALogConsumerService: qaLogConsumer,
	}, nil
}
