package app

import (
	"context"
	"log"

	"viral-game-service/internal/domain"
)

// SessionRepository abstracts how live sessions are tracked (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(sessionID string, session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ContentRepository loads authored game content (from cache/backing store).
type ContentRepository interface {
	GetContent(ctx context.Context, gameID string) (domain.Content, error)
}

// GameService contains the session lifecycle use cases.
type GameService struct {
	sessions SessionRepository
	content  ContentRepository
}

func NewGameService(sessions SessionRepository, content ContentRepository) *GameService {
	return &GameService{sessions: sessions, content: content}
}

// NewSessionForContent is exported for tests and infrastructure layers that
// need a session without going through a content repository.
func NewSessionForContent(id string, content domain.Content) *Session {
	return newSession(id, content)
}

// Start loads and validates content for gameID and opens a session under
// sessionID. Starting an id that is already live replaces the old session,
// which is closed and abandoned. Authoring problems are logged, not fatal:
// offending questions are dropped and play continues.
func (g *GameService) Start(ctx context.Context, sessionID, gameID string) (*Session, error) {
	content, err := g.content.GetContent(ctx, gameID)
	if err != nil {
		return nil, err
	}
	content, diags := domain.ValidateContent(content)
	for _, diag := range diags {
		log.Printf("content %s: %s", gameID, diag)
	}

	if old, ok := g.sessions.Get(sessionID); ok {
		old.Close()
	}
	session := newSession(sessionID, content)
	g.sessions.Put(sessionID, session)
	return session, nil
}

// Get returns a live session.
func (g *GameService) Get(sessionID string) (*Session, error) {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// End closes a session and forgets it.
func (g *GameService) End(sessionID string) {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	g.sessions.Delete(sessionID)
}
