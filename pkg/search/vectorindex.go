package search

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/vigilcore/sentry/pkg/types"
)

// VectorIndex is the cosine-similarity fallback search surface (tier T3).
type VectorIndex interface {
	Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error)
	Upsert(ctx context.Context, records []SanctionsRecord) error
}

// ChromemVectorIndex backs VectorIndex with an in-process chromem-go
// collection, embedding every record's name and each of its aliases as
// separate documents through the configured EmbeddingProvider.
type ChromemVectorIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   EmbeddingProvider
}

// NewChromemVectorIndex creates a fresh in-memory chromem-go collection
// named "sanctions-names", using embedder to vectorize both indexed records
// and incoming queries.
func NewChromemVectorIndex(embedder EmbeddingProvider) (*ChromemVectorIndex, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("sanctions-names", nil, embedFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("search: creating chromem collection: %w", err)
	}
	return &ChromemVectorIndex{db: db, collection: col, embedder: embedder}, nil
}

// Upsert embeds and stores every record under its canonical name plus each
// alias as a separate chromem document, all tagged with the record ID.
func (v *ChromemVectorIndex) Upsert(ctx context.Context, records []SanctionsRecord) error {
	for _, rec := range records {
		docs := append([]string{rec.Name}, rec.Aliases...)
		for i, text := range docs {
			id := fmt.Sprintf("%s#%d", rec.ID, i)
			err := v.collection.AddDocument(ctx, chromem.Document{
				ID:      id,
				Content: text,
				Metadata: map[string]string{
					"record_id": rec.ID,
					"name":      rec.Name,
				},
			})
			if err != nil {
				return fmt.Errorf("search: upserting %q: %w", text, err)
			}
		}
	}
	return nil
}

// Search embeds query and returns the top cosine-similarity matches,
// deduplicated back down to one candidate per record_id (keeping the best
// scoring document for that record).
func (v *ChromemVectorIndex) Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error) {
	n := limit
	if n <= 0 {
		n = 10
	}
	results, err := v.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("search: querying chromem: %w", err)
	}

	var out []types.SearchCandidate
	for _, r := range results {
		out = append(out, types.SearchCandidate{
			ID:    r.Metadata["record_id"],
			Name:  r.Metadata["name"],
			Tier:  types.TierVector,
			Score: r.Similarity,
			Trace: &types.CandidateTrace{Reason: "vector_similarity", Cosine: float64(r.Similarity)},
		})
	}
	return DedupeCandidates(out), nil
}

func embedFunc(embedder EmbeddingProvider) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if embedder == nil {
			return nil, fmt.Errorf("search: no embedding provider configured")
		}
		return embedder.Embed(ctx, text)
	}
}
