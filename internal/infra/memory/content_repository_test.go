package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"viral-game-service/internal/domain"
)

type countingLoader struct {
	calls int
	games map[string]domain.Content
}

func (l *countingLoader) LoadContent(_ context.Context, gameID string) (domain.Content, error) {
	l.calls++
	if content, ok := l.games[gameID]; ok {
		return content, nil
	}
	return domain.Content{}, domain.ErrContentNotFound
}

func TestGetContentCachesWithinTTL(t *testing.T) {
	loader := &countingLoader{games: map[string]domain.Content{
		"study-room": {GameID: "study-room"},
	}}
	repo := NewContentRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		content, err := repo.GetContent(context.Background(), "study-room")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if content.GameID != "study-room" {
			t.Fatalf("unexpected content %+v", content)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single loader call, got %d", loader.calls)
	}
}

func TestGetContentReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{games: map[string]domain.Content{
		"study-room": {GameID: "study-room"},
	}}
	repo := NewContentRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetContent(context.Background(), "study-room"); err != nil {
		t.Fatalf("get: %v", err)
	}

	// Past the TTL plus its 10% jitter ceiling.
	now = now.Add(time.Minute + 7*time.Second)
	if _, err := repo.GetContent(context.Background(), "study-room"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestGetContentPropagatesLoaderError(t *testing.T) {
	repo := NewContentRepository(&countingLoader{}, time.Minute)

	if _, err := repo.GetContent(context.Background(), "missing"); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestStaticLoader(t *testing.T) {
	loader := NewStaticContentLoader(map[string]domain.Content{
		"study-room": {GameID: "study-room"},
	})

	if _, err := loader.LoadContent(context.Background(), "study-room"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := loader.LoadContent(context.Background(), "missing"); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}
