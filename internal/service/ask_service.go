package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cdc-educa-be/internal/dto"
	"cdc-educa-be/internal/pkg/logger"
	"cdc-educa-be/internal/repository/unitofwork"
	"cdc-educa-be/pkg/pipeline"

	gocache "github.com/patrickmn/go-cache"
)

type IAskService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

type askService struct {
	uowFactory       unitofwork.RepositoryFactory
	orchestrator     *pipeline.Orchestrator
	publisherService IPublisherService
	answerCache      *gocache.Cache
	maxRetries       int
	logger           logger.ILogger
}

func NewAskService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *pipeline.Orchestrator,
	publisherService IPublisherService,
	cacheTTL time.Duration,
	maxRetries int,
	sysLogger logger.ILogger,
) IAskService {
	var answerCache *gocache.Cache
	if cacheTTL > 0 {
		answerCache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &askService{
		uowFactory:       uowFactory,
		orchestrator:     orchestrator,
		publisherService: publisherService,
		answerCache:      answerCache,
		maxRetries:       maxRetries,
		logger:           sysLogger,
	}
}

// cacheKey normalizes the query so trivially different spellings of the
// same question share an entry.
func cacheKey(query string, k, maxRetries int) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" + strconv.Itoa(k) + "|" + strconv.Itoa(maxRetries)
}

func (s *askService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	maxRetries := s.maxRetries
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}

	key := cacheKey(req.Query, req.K, maxRetries)
	if s.answerCache != nil {
		if cached, found := s.answerCache.Get(key); found {
			res := cached.(dto.AskResponse)
			res.Cached = true
			s.logger.Debug("ask", "Answer served from cache", map[string]interface{}{"key": key})
			return &res, nil
		}
	}

	result, err := s.orchestrator.Run(ctx, req.Query, req.K, maxRetries)
	if err != nil {
		s.logger.Error("ask", "Pipeline run failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("pipeline run: %w", err)
	}

	res := dto.AskResponse{
		Query:        result.Query,
		CleanedQuery: result.CleanedQuery,
		Blocks:       result.Blocks,
		Sources:      result.Sources,
		Meta:         result.Meta,
	}

	// Only successful answers are worth caching; blocks are cheap to
	// recompute and may depend on transient retrieval state.
	if s.answerCache != nil && !result.Blocked() {
		s.answerCache.Set(key, res, gocache.DefaultExpiration)
	}

	s.publishCompleted(ctx, &result)

	return &res, nil
}

// publishCompleted emits the QA audit event. Best effort: a bus outage
// never fails the user request.
func (s *askService) publishCompleted(ctx context.Context, result *pipeline.Result) {
	blocksJson, err := json.Marshal(result.Blocks)
	if err != nil {
		s.logger.Error("ask", "Failed to marshal blocks for event", map[string]interface{}{"error": err.Error()})
		return
	}
	metaJson, err := json.Marshal(result.Meta)
	if err != nil {
		s.logger.Error("ask", "Failed to marshal meta for event", map[string]interface{}{"error": err.Error()})
		return
	}

	retryCount := 0
	if retries, ok := result.Meta["retries"].(int); ok {
		retryCount = retries
	}

	msg := dto.QACompletedMessage{
		Query:        result.Query,
		CleanedQuery: result.CleanedQuery,
		Blocked:      result.Blocked(),
		BlockCode:    blockCode(result),
		Blocks:       blocksJson,
		Meta:         metaJson,
		SourceCount:  len(result.Sources),
		RetryCount:   retryCount,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("ask", "Failed to marshal QA event", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("ask", "Failed to publish QA event", map[string]interface{}{"error": err.Error()})
	}
}

func blockCode(result *pipeline.Result) string {
	switch {
	case result.Blocks.ErrorPII:
		return string(pipeline.BlockPII)
	case result.Blocks.ErrorScope:
		return string(pipeline.BlockScope)
	case result.Blocks.ErrorInsufficientSources:
		return string(pipeline.BlockInsufficientSources)
	case result.Blocks.ErrorValidationFailed:
		return string(pipeline.BlockValidationFailed)
	}
	return ""
}

func (s *askService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	articles, err := uow.ArticleRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	embeddings, err := uow.ArticleEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}

	status := "ok"
	if articles != embeddings || articles == 0 {
		status = "degraded"
	}

	return &dto.HealthResponse{
		Status:     status,
		Articles:   articles,
		Embeddings: embeddings,
	}, nil
}
