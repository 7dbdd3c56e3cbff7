package dialogue

import (
	"testing"

	"viral-game-service/internal/domain"
)

func TestResolveKnownSequence(t *testing.T) {
	store := NewStore([]domain.DialogueSequence{
		{ID: "intro", Lines: []domain.DialogueLine{{Speaker: "Aluna", Text: "Halo"}}},
		{ID: "outro", Lines: []domain.DialogueLine{{Speaker: "Kayana", Text: "Sampai jumpa"}}},
	})

	seq, ok := store.Resolve("outro")
	if !ok {
		t.Fatalf("expected outro to resolve")
	}
	if len(seq.Lines) != 1 || seq.Lines[0].Speaker != "Kayana" {
		t.Fatalf("unexpected sequence %+v", seq)
	}
}

func TestResolveMissIsNormal(t *testing.T) {
	store := NewStore(nil)

	if _, ok := store.Resolve("intro"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestDuplicateIDKeepsLast(t *testing.T) {
	store := NewStore([]domain.DialogueSequence{
		{ID: "intro", Lines: []domain.DialogueLine{{Text: "old"}}},
		{ID: "intro", Lines: []domain.DialogueLine{{Text: "new"}}},
	})

	seq, ok := store.Resolve("intro")
	if !ok || seq.Lines[0].Text != "new" {
		t.Fatalf("expected last occurrence to win, got %+v", seq)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 stored sequence, got %d", store.Len())
	}
}
