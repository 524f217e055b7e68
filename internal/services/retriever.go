package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/career-roadmap/internal/models"
)

// ResourceRetriever finds curated learning material for a skill set. An empty
// string means nothing relevant was found.
type ResourceRetriever interface {
	Retrieve(ctx context.Context, skills models.SkillSet) (string, error)
}

type qdrantResourceRetriever struct {
	embedder Embedder
	qdrant   QdrantService
	limit    int
}

func NewResourceRetriever(embedder Embedder, qdrant QdrantService, limit int) ResourceRetriever {
	if limit <= 0 {
		limit = 5
	}
	return &qdrantResourceRetriever{
		embedder: embedder,
		qdrant:   qdrant,
		limit:    limit,
	}
}

func (r *qdrantResourceRetriever) Retrieve(ctx context.Context, skills models.SkillSet) (string, error) {
	query := strings.TrimSpace(skills.Outline())
	if query == "" {
		return "", nil
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.qdrant.SearchSimilar(ctx, embedding, DocTypeLearningResource, r.limit)
	if err != nil {
		return "", err
	}
	return FormatResources(results), nil
}

// FormatResources renders search hits as numbered prompt context.
func FormatResources(results []SearchResult) string {
	var parts []string
	for _, result := range results {
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Resource %d (Score: %.2f) ---\n%s", len(parts)+1, result.Score, text))
	}
	return strings.Join(parts, "\n\n")
}
