// Package rag sequences the pipeline: parse, chunk, embed, store on ingest;
// retrieve, assemble and generate on query. Each stage is a single blocking
// attempt and any failure aborts the whole operation.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/uptrace/bun"

	"study-rag/internal/chromemdb"
	"study-rag/internal/config"
	"study-rag/internal/db"
	"study-rag/internal/embedding"
	"study-rag/internal/helper"
	"study-rag/internal/llmservice"
	"study-rag/internal/models"
	"study-rag/internal/parser"
	"study-rag/internal/prompt"
)

// vectorStore is what both backends provide to the pipeline.
type vectorStore interface {
	AddDocuments(ctx context.Context, docs []models.ChunkEmbedding) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error)
}

type RAG struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	parser   *parser.Parser
	bunDB    *bun.DB // nil unless the postgres backend is configured
}

func New(cfg *config.Config, embedder embeddings.Embedder, bunDB *bun.DB) *RAG {
	return &RAG{cfg: cfg, embedder: embedder, parser: parser.New(cfg), bunDB: bunDB}
}

// Ingest parses the uploaded document, embeds its chunks, and persists them
// in a store created for this session. The raw upload lives only in a
// temporary file that is removed before Ingest returns. On any failure no
// store location is handed to the caller.
func (r *RAG) Ingest(ctx context.Context, raw []byte, fileName string) (*models.IngestResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty document payload")
	}

	tmpDir, err := os.MkdirTemp("", "study-rag-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(fileName))
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	chunks, err := r.parser.Parse(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	chunkEmbeddings, err := embedding.EmbedChunks(ctx, r.embedder, fileName, chunks)
	if err != nil {
		return nil, err
	}

	sessionID, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	store, location, err := r.createStore(sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.AddDocuments(ctx, chunkEmbeddings); err != nil {
		return nil, err
	}

	log.Info().Str("file", fileName).Str("store", location).Int("chunks", len(chunks)).Msg("document ingested")
	return &models.IngestResult{VectorStorePath: location, ChunkCount: len(chunks)}, nil
}

// Answer retrieves the most relevant chunks for the request, renders the
// preference-driven prompt and asks the generation model. Questions and
// study guides share this path; they differ only in how the query text is
// derived from the user input.
func (r *RAG) Answer(ctx context.Context, req models.QueryRequest) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", fmt.Errorf("question is required")
	}
	if req.VectorStorePath == "" {
		return "", fmt.Errorf("vector store path is required")
	}

	query := DeriveQuery(req.Kind, req.Question)

	store, err := r.openStore(ctx, req.VectorStorePath)
	if err != nil {
		return "", err
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := store.Search(ctx, queryEmbedding, r.cfg.RAG.TopK)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Content
	}
	contextText := strings.Join(texts, models.ContextSeparator)

	prefs := req.Prefs()
	filled := prompt.Fill(prompt.Build(prefs), contextText, query, prefs)

	genCfg := config.LLMConfig{
		BaseURL: r.cfg.GenLLM.BaseURL,
		Model:   r.cfg.GenLLM.Model,
		Key:     r.cfg.GenLLM.Key,
	}
	if req.ModelName != "" {
		genCfg.Model = req.ModelName
	}
	// The server-side key wins; a client-supplied key is only a fallback
	// for deployments that configure none.
	if genCfg.Key == "" {
		genCfg.Key = req.GroqAPIKey
	}
	if genCfg.Key == "" {
		return "", fmt.Errorf("no API key configured for generation")
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: filled}},
		},
	}
	return llmservice.GenerateContent(ctx, &genCfg, messages)
}

// DeriveQuery turns user input into the retrieval query. Study-guide
// requests wrap the topic; plain questions pass through trimmed.
func DeriveQuery(kind, text string) string {
	text = strings.TrimSpace(text)
	if kind == models.KindStudyGuide {
		return fmt.Sprintf("Create a study guide on %s.", text)
	}
	return text
}

func (r *RAG) createStore(sessionID string) (vectorStore, string, error) {
	switch r.cfg.Storage.Backend {
	case "postgres":
		if r.bunDB == nil {
			return nil, "", fmt.Errorf("postgres backend selected but no database connected")
		}
		return db.NewStore(r.bunDB, sessionID, r.cfg.EmbedLLM.Model), sessionID, nil
	default:
		if err := helper.CreateFolder(r.cfg.RAG.DataDir); err != nil {
			return nil, "", fmt.Errorf("failed to create data dir: %w", err)
		}
		path := filepath.Join(r.cfg.RAG.DataDir, sessionID)
		store, err := chromemdb.Create(path, r.cfg.EmbedLLM.Model)
		if err != nil {
			return nil, "", err
		}
		return store, path, nil
	}
}

func (r *RAG) openStore(ctx context.Context, location string) (vectorStore, error) {
	switch r.cfg.Storage.Backend {
	case "postgres":
		if r.bunDB == nil {
			return nil, fmt.Errorf("postgres backend selected but no database connected")
		}
		return db.OpenStore(ctx, r.bunDB, location, r.cfg.EmbedLLM.Model)
	default:
		return chromemdb.Open(location, r.cfg.EmbedLLM.Model)
	}
}
