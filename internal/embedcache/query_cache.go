package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"

	"github.com/liftlog/coach/internal/ai"
)

// WrapQueryCache memoizes single-query embeddings so repeated questions skip a
// provider round trip at retrieval time. Batch (document) embeddings are not
// cached: ingestion already skips rows that carry a vector.
func WrapQueryCache(next ai.Embedder, size int, ttl time.Duration) ai.Embedder {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &queryCacheEmbedder{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type queryCacheEmbedder struct {
	next  ai.Embedder
	cache *expirable.LRU[string, []float32]
}

func (q *queryCacheEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return q.next.EmbedBatch(ctx, texts)
}

func (q *queryCacheEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(q.next.EmbedModelName(), text)
	if cached, ok := q.cache.Get(key); ok {
		logutil.GetLogger(ctx).Debug("query embedding cache hit")
		return cloneVector(cached), nil
	}
	vec, err := q.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	q.cache.Add(key, cloneVector(vec))
	return vec, nil
}

func (q *queryCacheEmbedder) EmbedModelName() string {
	return q.next.EmbedModelName()
}

func cacheKey(modelName, text string) string {
	hash := sha256.Sum256([]byte(modelName + "\x00" + text))
	return hex.EncodeToString(hash[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
