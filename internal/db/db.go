package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"study-rag/internal/config"
	"study-rag/internal/models"
)

// Document is one embedded chunk row. Rows are grouped into sessions by
// SessionID; a session is the Postgres equivalent of a chromem store path.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID             int64     `bun:"id,pk,autoincrement"`
	SessionID      string    `bun:"session_id,notnull"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull,type:vector(768)"`
	EmbeddingModel string    `bun:"embedding_model,notnull"`
	SourceFilename string    `bun:"source_filename"`
	PageNumber     int       `bun:"page_number"`
	ChunkID        int       `bun:"chunk_id"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Store scopes reads and writes to one session's rows.
type Store struct {
	db      *bun.DB
	session string
	model   string
}

// NewStore prepares a store for a fresh session; nothing is written until
// AddDocuments.
func NewStore(db *bun.DB, sessionID, embeddingModel string) *Store {
	return &Store{db: db, session: sessionID, model: embeddingModel}
}

// OpenStore validates an existing session before queries run: the session
// must have rows, and they must have been embedded with the same model.
func OpenStore(ctx context.Context, db *bun.DB, sessionID, embeddingModel string) (*Store, error) {
	var storedModel string
	err := db.NewSelect().
		Model((*Document)(nil)).
		Column("embedding_model").
		Where("session_id = ?", sessionID).
		Limit(1).
		Scan(ctx, &storedModel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: session %s", models.ErrStoreNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if storedModel != embeddingModel {
		return nil, fmt.Errorf("%w: session built with %q, configured %q",
			models.ErrModelMismatch, storedModel, embeddingModel)
	}
	return &Store{db: db, session: sessionID, model: embeddingModel}, nil
}

func (s *Store) AddDocuments(ctx context.Context, docs []models.ChunkEmbedding) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to add")
	}
	rows := make([]Document, len(docs))
	for i, doc := range docs {
		rows[i] = Document{
			SessionID:      s.session,
			Content:        doc.Content,
			Embedding:      doc.Embedding,
			EmbeddingModel: s.model,
			SourceFilename: doc.SourceFilename,
			PageNumber:     doc.PageNumber,
			ChunkID:        doc.ChunkID,
		}
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}
	return nil
}

// Search returns the k nearest chunks of this session by vector distance,
// most similar first.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	var rows []Document
	err := s.db.NewSelect().
		Model(&rows).
		Column("content", "source_filename", "page_number", "chunk_id").
		Where("session_id = ?", s.session).
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: session %s", models.ErrStoreNotFound, s.session)
	}

	chunks := make([]models.ScoredChunk, len(rows))
	for i, row := range rows {
		chunks[i] = models.ScoredChunk{
			Content:        row.Content,
			SourceFilename: row.SourceFilename,
			PageNumber:     row.PageNumber,
			ChunkID:        row.ChunkID,
		}
	}
	return chunks, nil
}
