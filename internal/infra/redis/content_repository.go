package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"viral-game-service/internal/domain"
)

// ContentLoader fetches authored game content from a backing store
// (YAML asset files, Postgres, etc).
type ContentLoader interface {
	LoadContent(ctx context.Context, gameID string) (domain.Content, error)
}

// ContentRepository caches game content in Redis as a JSON blob per game and
// falls back to a loader on cache miss.
// Content is stored as: SET game:{gameID}:content {json} EX {ttl}
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, gameID string) (domain.Content, error) {
	key := r.contentKey(gameID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var content domain.Content
		if err := json.Unmarshal(raw, &content); err == nil {
			return content, nil
		}
		// Corrupt cache entry: fall through and reload.
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var content domain.Content
			if err := json.Unmarshal(raw, &content); err == nil {
				return content, nil
			}
		}

		content, err := r.loader.LoadContent(ctx, gameID)
		if err != nil {
			return domain.Content{}, err
		}

		if raw, err := json.Marshal(content); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.Content{}, err
	}
	return result.(domain.Content), nil
}

func (r *ContentRepository) contentKey(gameID string) string {
	return "game:" + gameID + ":content"
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
