package chromemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"

	"study-rag/internal/models"
)

const (
	collectionName = "chunks"
	metaFileName   = "meta.json"
	compress       = false
)

// storeMeta is persisted next to the chromem files so a store can be
// validated before it is queried.
type storeMeta struct {
	EmbeddingModel string    `json:"embedding_model"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is one session's persistent vector store rooted at a filesystem path.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	path       string
	model      string
}

// Create makes a fresh persistent store at path and records the embedding
// model it was built with.
func Create(path, embeddingModel string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	meta := storeMeta{EmbeddingModel: embeddingModel, CreatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(path, metaFileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write store metadata: %w", err)
	}

	return &Store{db: db, collection: collection, path: path, model: embeddingModel}, nil
}

// Open loads an existing store. It fails with models.ErrStoreNotFound when
// the path holds no store, and with models.ErrModelMismatch when the store
// was built with a different embedding model.
func Open(path, embeddingModel string) (*Store, error) {
	data, err := os.ReadFile(filepath.Join(path, metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("failed to read store metadata: %w", err)
	}
	var meta storeMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable metadata at %s", models.ErrStoreNotFound, path)
	}
	if meta.EmbeddingModel != embeddingModel {
		return nil, fmt.Errorf("%w: store built with %q, configured %q",
			models.ErrModelMismatch, meta.EmbeddingModel, embeddingModel)
	}

	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	if collection.Count() == 0 {
		return nil, fmt.Errorf("%w: empty store at %s", models.ErrStoreNotFound, path)
	}
	return &Store{db: db, collection: collection, path: path, model: embeddingModel}, nil
}

// AddDocuments inserts pre-embedded chunks into the collection.
func (s *Store) AddDocuments(ctx context.Context, docs []models.ChunkEmbedding) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to add")
	}
	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s-p%d-c%d", doc.SourceFilename, doc.PageNumber, doc.ChunkID),
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata: map[string]string{
				"source": doc.SourceFilename,
				"page":   strconv.Itoa(doc.PageNumber),
				"chunk":  strconv.Itoa(doc.ChunkID),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns up to k chunks nearest to the query embedding, most
// similar first. k is clamped to the collection size.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, fmt.Errorf("%w: empty store at %s", models.ErrStoreNotFound, s.path)
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	chunks := make([]models.ScoredChunk, len(results))
	for i, res := range results {
		pageNum, _ := strconv.Atoi(res.Metadata["page"])
		chunkID, _ := strconv.Atoi(res.Metadata["chunk"])
		chunks[i] = models.ScoredChunk{
			Content:        res.Content,
			Similarity:     res.Similarity,
			SourceFilename: res.Metadata["source"],
			PageNumber:     pageNum,
			ChunkID:        chunkID,
		}
	}
	return chunks, nil
}
