package memory

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"viral-game-service/internal/domain"
)

// ContentLoader fetches authored game content from a backing store
// (YAML asset files, Postgres, etc).
type ContentLoader interface {
	LoadContent(ctx context.Context, gameID string) (domain.Content, error)
}

// ContentRepository caches game content with TTL to avoid repeated store hits.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedContent
}

type cachedContent struct {
	content   domain.Content
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedContent),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, gameID string) (domain.Content, error) {
	if content, ok := r.fresh(gameID); ok {
		return content, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Another waiter may have refreshed while we queued.
		if content, ok := r.fresh(gameID); ok {
			return content, nil
		}
		return r.refresh(ctx, gameID)
	})
	if err != nil {
		return domain.Content{}, err
	}
	return result.(domain.Content), nil
}

// fresh returns the cached content for gameID if it has not expired.
func (r *ContentRepository) fresh(gameID string) (domain.Content, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[gameID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Content{}, false
	}
	return entry.content, true
}

// refresh pulls gameID from the loader and caches it for a jittered TTL.
func (r *ContentRepository) refresh(ctx context.Context, gameID string) (domain.Content, error) {
	content, err := r.loader.LoadContent(ctx, gameID)
	if err != nil {
		return domain.Content{}, err
	}
	log.Printf("content cache: refreshed %s (%d sequences, %d questions)",
		gameID, len(content.Sequences), len(content.Questions))

	r.mu.Lock()
	r.cache[gameID] = cachedContent{
		content:   content,
		expiresAt: r.clock().Add(r.ttlWithJitter()),
	}
	r.mu.Unlock()
	return content, nil
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticContentLoader struct {
	games map[string]domain.Content
}

func NewStaticContentLoader(games map[string]domain.Content) *StaticContentLoader {
	return &StaticContentLoader{games: games}
}

func (l *StaticContentLoader) LoadContent(_ context.Context, gameID string) (domain.Content, error) {
	if content, ok := l.games[gameID]; ok {
		return content, nil
	}
	return domain.Content{}, domain.ErrContentNotFound
}
