package repository

import (
	"context"
	"fmt"

	"newsqa-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type passageRepository struct {
	pool            *pgxpool.Pool
	encoder         domain.VectorEncoder
	knowledgeBaseID string
}

// NewPassageRepository creates a Retriever over the indexed passage store.
// Queries are embedded with encoder and ranked by cosine similarity within a
// single knowledge base, with a flat boost for passages containing the query
// text verbatim.
func NewPassageRepository(pool *pgxpool.Pool, encoder domain.VectorEncoder, knowledgeBaseID string) domain.Retriever {
	return &passageRepository{
		pool:            pool,
		encoder:         encoder,
		knowledgeBaseID: knowledgeBaseID,
	}
}

func (r *passageRepository) Retrieve(ctx context.Context, query string, k int) ([]domain.EvidenceItem, error) {
	if k <= 0 {
		k = 5
	}

	vectors, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("encoder returned no vector for query")
	}

	sql := `
		SELECT content, source_locator,
		       (1 - (embedding <=> $1))
		       + CASE WHEN content ILIKE '%' || $2 || '%' THEN 0.1 ELSE 0 END AS score
		FROM passages
		WHERE knowledge_base_id = $3
		ORDER BY score DESC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, sql, pgvector.NewVector(vectors[0]), query, r.knowledgeBaseID, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var items []domain.EvidenceItem
	for rows.Next() {
		var item domain.EvidenceItem
		if err := rows.Scan(&item.PassageText, &item.Locator, &item.Score); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
