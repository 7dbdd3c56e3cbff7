package app

import (
	"log"
	"sync"

	"viral-game-service/internal/dialogue"
	"viral-game-service/internal/domain"
	"viral-game-service/internal/event"
	"viral-game-service/internal/quiz"
)

// Event is the envelope forwarded to transport subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Session is one play-through of a game: it owns the event bus, the dialogue
// player, and the quiz engine, and serializes every client-driven operation
// under its mutex. The bus itself carries no lock; the session is its single
// owner.
type Session struct {
	id      string
	content domain.Content

	mu     sync.Mutex
	bus    *event.Bus
	store  *dialogue.Store
	player *dialogue.Player
	engine *quiz.Engine

	subscribers map[chan Event]struct{}
	closed      bool
}

func newSession(id string, content domain.Content) *Session {
	bus := event.NewBus()
	s := &Session{
		id:          id,
		content:     content,
		bus:         bus,
		store:       dialogue.NewStore(content.Sequences),
		player:      dialogue.NewPlayer(bus),
		engine:      quiz.NewEngine(bus),
		subscribers: make(map[chan Event]struct{}),
	}
	s.engine.Load(content.Questions)
	s.wire()
	return s
}

// wire connects the bus: dialogue requests resolve through the store, quiz
// completion picks the success or failure follow-up sequence, and everything
// the presentation layer needs is forwarded to subscriber channels.
func (s *Session) wire() {
	event.Subscribe(s.bus, func(req event.DialogueRequested) {
		seq, ok := s.store.Resolve(req.SequenceID)
		if !ok {
			log.Printf("session %s: dialogue sequence %q not found", s.id, req.SequenceID)
			return
		}
		s.player.Start(seq, req.OnComplete)
	})

	event.Subscribe(s.bus, func(msg event.QuizFinished) {
		s.forward(Event{Type: "quizFinished", Payload: msg})

		followUp := s.content.FailureSequence
		if msg.Summary.AllCorrect {
			followUp = s.content.SuccessSequence
		}
		if followUp != "" {
			event.Publish(s.bus, event.DialogueRequested{SequenceID: followUp})
		}
	})

	forward := func(eventType string) func(any) {
		return func(payload any) { s.forward(Event{Type: eventType, Payload: payload}) }
	}
	event.Subscribe(s.bus, func(msg event.LineShown) { forward("line")(msg) })
	event.Subscribe(s.bus, func(msg event.LineRevealed) { forward("lineRevealed")(msg) })
	event.Subscribe(s.bus, func(msg event.DialogueFinished) { forward("dialogueFinished")(msg) })
	event.Subscribe(s.bus, func(msg event.QuestionShown) { forward("question")(msg) })
	event.Subscribe(s.bus, func(msg event.SubmitEnabled) { forward("submitEnabled")(msg) })
	event.Subscribe(s.bus, func(msg event.Feedback) { forward("feedback")(msg) })
	event.Subscribe(s.bus, func(msg event.GameStatus) { forward("gameStatus")(msg) })
}

func (s *Session) forward(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop the oldest queued event so the newest
			// state always gets through.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Subscribe returns a channel of outbound events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// StartMinigame plays the intro sequence and starts the quiz when it
// completes. With no intro (or an unknown id) the quiz starts right away.
func (s *Session) StartMinigame(introSequenceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if introSequenceID == "" {
		s.engine.Start()
		return
	}
	if _, ok := s.store.Resolve(introSequenceID); !ok {
		log.Printf("session %s: intro sequence %q not found, starting quiz directly", s.id, introSequenceID)
		s.engine.Start()
		return
	}
	event.Publish(s.bus, event.DialogueRequested{
		SequenceID: introSequenceID,
		OnComplete: s.engine.Start,
	})
}

// RequestDialogue plays a named sequence with no completion chaining.
func (s *Session) RequestDialogue(sequenceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Publish(s.bus, event.DialogueRequested{SequenceID: sequenceID})
}

// Advance is the continue signal for the active dialogue.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Advance()
}

// MarkRevealed reports that the client finished revealing the current line.
func (s *Session) MarkRevealed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.MarkRevealed()
}

// SelectOption records a multiple-choice selection.
func (s *Session) SelectOption(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SelectOption(index)
}

// RecordPairing records a drag item landing on (or leaving) a category.
func (s *Session) RecordPairing(itemID, categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.RecordPairing(itemID, categoryID)
}

// RecordPlacement is the physical drop-zone signal for an item.
func (s *Session) RecordPlacement(itemID string, inZone bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.RecordPlacement(itemID, inZone)
}

// Submit validates the current answer.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Submit()
}

// NextQuestion advances past a submitted question.
func (s *Session) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Next()
}

// RestartQuiz resets results and shuffle caches and replays from the first
// question.
func (s *Session) RestartQuiz() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Restart()
}

// Close tears the session down: all bus registrations are cleared and every
// subscriber channel is closed. Operations after Close are silent no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.bus.Shutdown()
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
}
