package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"cdc-educa-be/internal/config"
	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/repository/unitofwork"
	"cdc-educa-be/pkg/database"
	"cdc-educa-be/pkg/embedding"
	"cdc-educa-be/pkg/rag/search"
	"cdc-educa-be/pkg/utils"

	"github.com/fatih/color"
)

// chunkRecord is one line of the corpus JSONL produced by the chunker.
type chunkRecord struct {
	Id     string `json:"id"`
	Artigo string `json:"artigo"`
	Lei    string `json:"lei"`
	Texto  string `json:"texto"`
	Url    string `json:"url"`
}

const (
	embedChunkSize    = 1500
	embedChunkOverlap = 200
)

func main() {
	file := flag.String("file", "data/cdc_chunks.jsonl", "Path to the corpus JSONL file")
	reset := flag.Bool("reset", false, "Drop existing corpus rows before ingesting")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
	color.Cyan("Embedding provider: %s", cfg.Ai.EmbeddingProvider)

	f, err := os.Open(*file)
	if err != nil {
		color.Red("Failed to open corpus file %s: %v", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(ctx)

	if *reset {
		color.Yellow("Resetting corpus tables...")
		if err := uow.ArticleEmbeddingRepository().DeleteAll(ctx); err != nil {
			color.Red("Failed to clear embeddings: %v", err)
			os.Exit(1)
		}
		if err := uow.ArticleRepository().DeleteAll(ctx); err != nil {
			color.Red("Failed to clear articles: %v", err)
			os.Exit(1)
		}
	}

	ingested := 0
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec chunkRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			color.Yellow("Skipping malformed line: %v", err)
			skipped++
			continue
		}
		if rec.Texto == "" {
			color.Yellow("Skipping %s: empty texto", rec.Id)
			skipped++
			continue
		}

		existing, err := uow.ArticleRepository().FindByChunkId(ctx, rec.Id)
		if err != nil {
			color.Red("Lookup failed for %s: %v", rec.Id, err)
			os.Exit(1)
		}
		if existing != nil {
			skipped++
			continue
		}

		// One embedding row per article keeps the index and metadata
		// in lockstep, so only the leading chunk is embedded.
		document := utils.SplitText(rec.Texto, embedChunkSize, embedChunkOverlap)[0]
		embeddingRes, err := provider.Generate(ctx, document, "RETRIEVAL_DOCUMENT")
		if err != nil {
			color.Red("Embedding failed for %s: %v", rec.Id, err)
			os.Exit(1)
		}

		if err := uow.Begin(ctx); err != nil {
			color.Red("Begin transaction failed: %v", err)
			os.Exit(1)
		}

		article := &entity.Article{
			ChunkId: rec.Id,
			Artigo:  rec.Artigo,
			Lei:     rec.Lei,
			Url:     rec.Url,
			Texto:   rec.Texto,
		}
		if err := uow.ArticleRepository().Create(ctx, article); err != nil {
			_ = uow.Rollback()
			color.Red("Failed to persist article %s: %v", rec.Id, err)
			os.Exit(1)
		}

		embed := &entity.ArticleEmbedding{
			ArticleId:      article.Id,
			Document:       document,
			EmbeddingValue: embeddingRes.Embedding.Values,
		}
		if err := uow.ArticleEmbeddingRepository().Create(ctx, embed); err != nil {
			_ = uow.Rollback()
			color.Red("Failed to persist embedding %s: %v", rec.Id, err)
			os.Exit(1)
		}

		if err := uow.Commit(); err != nil {
			color.Red("Commit failed for %s: %v", rec.Id, err)
			os.Exit(1)
		}

		ingested++
		if ingested%25 == 0 {
			log.Printf("Ingested %d articles...", ingested)
		}
	}
	if err := scanner.Err(); err != nil {
		color.Red("Failed reading corpus file: %v", err)
		os.Exit(1)
	}

	if err := search.CheckIntegrity(ctx, uowFactory.NewUnitOfWork(ctx)); err != nil {
		color.Red("Post-ingest integrity check failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Ingestion complete: %d articles ingested, %d skipped", ingested, skipped)
}
