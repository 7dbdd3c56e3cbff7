// Package dialogue holds the sequence store and the player state machine that
// streams lines to the presentation layer.
package dialogue

import "viral-game-service/internal/domain"

// Store maps sequence ids to authored dialogue sequences. Populated once at
// session start; immutable afterwards.
type Store struct {
	sequences map[string]domain.DialogueSequence
}

// NewStore indexes the given sequences by id. A duplicate id keeps the last
// occurrence, matching last-write-wins on authored data.
func NewStore(sequences []domain.DialogueSequence) *Store {
	indexed := make(map[string]domain.DialogueSequence, len(sequences))
	for _, seq := range sequences {
		indexed[seq.ID] = seq
	}
	return &Store{sequences: indexed}
}

// Resolve looks up a sequence by id. A miss is a normal outcome (unknown id);
// callers log and no-op rather than treating it as a failure.
func (s *Store) Resolve(id string) (domain.DialogueSequence, bool) {
	seq, ok := s.sequences[id]
	return seq, ok
}

// Len returns the number of stored sequences.
func (s *Store) Len() int {
	return len(s.sequences)
}
