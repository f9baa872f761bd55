package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"pdfchat/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorStorer is the contract both pipelines share: ingestion appends
// documents and chunk batches, the query path runs similarity search
// restricted to one document.
type VectorStorer interface {
	SaveDocument(context.Context, types.Document) error
	GetDocumentByID(context.Context, uuid.UUID) (*types.Document, error)
	SaveChunks(context.Context, []types.Chunk) error
	SearchByDocument(ctx context.Context, docID uuid.UUID, queryVec []float32, limit int) ([]types.Chunk, error)
}

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:   pool,
		logger: slog.Default().With("component", "store"),
	}, nil
}

func (p *PostgresStore) SaveDocument(ctx context.Context, doc types.Document) error {
	query := `INSERT INTO documents (id, filename, size_bytes, page_count, summary, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := p.pool.Exec(
		ctx,
		query,
		doc.ID,
		doc.Filename,
		doc.SizeBytes,
		doc.PageCount,
		doc.Summary,
		doc.UploadedAt,
	)
	return err
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	rows, err := p.pool.Query(ctx, "SELECT id, filename, size_bytes, page_count, summary, uploaded_at FROM documents WHERE id = $1", docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	doc := &types.Document{}
	if err := rows.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.SizeBytes,
		&doc.PageCount,
		&doc.Summary,
		&doc.UploadedAt); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveChunks writes a document's chunk batch in one transaction. The index
// has no partial-write recovery, so all-or-nothing insertion is the only
// consistency guarantee ingestion gets.
func (p *PostgresStore) SaveChunks(ctx context.Context, chunks []types.Chunk) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
    INSERT INTO chunks (id, doc_id, position, page, content, embedding)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	for _, c := range chunks {
		_, err := tx.Exec(ctx, query,
			c.ID, c.DocID, c.Position, c.Page, c.Content, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SearchByDocument returns up to limit chunks nearest to queryVec, restricted
// to entries whose doc_id matches. The doc_id filter is the only tenant
// isolation in the system and must never be relaxed.
func (p *PostgresStore) SearchByDocument(ctx context.Context, docID uuid.UUID, queryVec []float32, limit int) ([]types.Chunk, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT c.id, c.doc_id, c.position, c.page, c.content,
		       c.embedding <=> $2 AS distance
		FROM chunks c
		WHERE c.doc_id = $1 AND c.embedding IS NOT NULL
		ORDER BY c.embedding <=> $2
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, docID, vector, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.Position,
			&chunk.Page,
			&chunk.Content,
			&chunk.Distance)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("chunk matched", "doc_id", chunk.DocID, "position", chunk.Position, "distance", chunk.Distance)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		page_count INTEGER NOT NULL,
		summary TEXT,
		uploaded_at TIMESTAMP WITH TIME ZONE
	);

    CREATE TABLE IF NOT EXISTS chunks (
        id UUID PRIMARY KEY,
        doc_id UUID NOT NULL,
        position INT NOT NULL,
        page INT NOT NULL,
        content TEXT NOT NULL,
        embedding vector(1536) -- text-embedding-3-small
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	-- Retrieval is always scoped to one document.
	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("postgres connection pool closed")
	}
	return nil
}
