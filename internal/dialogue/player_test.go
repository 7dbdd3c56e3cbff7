package dialogue

import (
	"testing"

	"viral-game-service/internal/domain"
	"viral-game-service/internal/event"
)

func threeLines() domain.DialogueSequence {
	return domain.DialogueSequence{
		ID: "intro",
		Lines: []domain.DialogueLine{
			{Speaker: "Aluna", Text: "one", Portrait: "aluna_neutral"},
			{Speaker: "Kayana", Text: "two", Portrait: "kayana_neutral"},
			{Speaker: "Aluna", Text: "three", Portrait: "aluna_happy"},
		},
	}
}

func TestCompletionFiresOnceAfterLastAdvance(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	var shownCount int
	event.Subscribe(bus, func(event.LineShown) {
		shownCount++
		player.MarkRevealed()
	})

	completions := 0
	player.Start(threeLines(), func() { completions++ })

	if shownCount != 1 {
		t.Fatalf("expected first line shown on start, got %d", shownCount)
	}

	player.Advance() // line 2
	player.Advance() // line 3
	if completions != 0 {
		t.Fatalf("callback fired before the last advance")
	}

	player.Advance() // past the end
	if completions != 1 {
		t.Fatalf("expected exactly one completion, got %d", completions)
	}
	if shownCount != 3 {
		t.Fatalf("expected 3 lines shown, got %d", shownCount)
	}
	if player.Presenting() {
		t.Fatalf("expected player idle after completion")
	}
}

func TestAdvanceWhileIdleIsNoOp(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	fired := false
	event.Subscribe(bus, func(event.LineShown) { fired = true })
	event.Subscribe(bus, func(event.DialogueFinished) { fired = true })

	player.Advance()
	player.Advance()

	if fired {
		t.Fatalf("expected no events from advancing an idle player")
	}
	if player.Presenting() || player.Index() != 0 {
		t.Fatalf("expected idle state unchanged")
	}
}

func TestAdvanceDuringRevealFastForwards(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	var revealed []int
	event.Subscribe(bus, func(msg event.LineRevealed) { revealed = append(revealed, msg.Index) })

	player.Start(threeLines(), nil)

	// First advance lands mid-reveal: it completes the text, does not move on.
	player.Advance()
	if len(revealed) != 1 || revealed[0] != 0 {
		t.Fatalf("expected reveal fast-forward for line 0, got %v", revealed)
	}
	if player.Index() != 0 {
		t.Fatalf("expected to stay on line 0, got %d", player.Index())
	}

	// Now the line is revealed, so the next advance moves on.
	player.Advance()
	if player.Index() != 1 {
		t.Fatalf("expected line 1, got %d", player.Index())
	}
}

func TestCallbackOverwritesAuthoredOnAfterOfLastLine(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	event.Subscribe(bus, func(event.LineShown) { player.MarkRevealed() })

	authoredFired := false
	seq := threeLines()
	seq.Lines[2].OnAfter = func() { authoredFired = true }

	injectedFired := false
	player.Start(seq, func() { injectedFired = true })
	player.Advance()
	player.Advance()
	player.Advance()

	if authoredFired {
		t.Fatalf("authored OnAfter should be overwritten by the injected callback")
	}
	if !injectedFired {
		t.Fatalf("injected callback should fire")
	}
	if seq.Lines[2].OnAfter == nil {
		t.Fatalf("stored sequence must not be mutated")
	}
}

func TestAuthoredOnAfterSurvivesWithoutInjection(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	event.Subscribe(bus, func(event.LineShown) { player.MarkRevealed() })

	authoredFired := false
	seq := threeLines()
	seq.Lines[2].OnAfter = func() { authoredFired = true }

	player.Start(seq, nil)
	player.Advance()
	player.Advance()
	player.Advance()

	if !authoredFired {
		t.Fatalf("authored OnAfter should fire when no callback is injected")
	}
}

func TestStartAbandonsActiveSequence(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	event.Subscribe(bus, func(event.LineShown) { player.MarkRevealed() })

	abandonedFired := false
	player.Start(threeLines(), func() { abandonedFired = true })
	player.Advance()

	completions := 0
	replacement := domain.DialogueSequence{
		ID:    "replacement",
		Lines: []domain.DialogueLine{{Speaker: "Kayana", Text: "only"}},
	}
	player.Start(replacement, func() { completions++ })

	if player.Index() != 0 {
		t.Fatalf("expected restart at line 0, got %d", player.Index())
	}

	player.Advance()
	if abandonedFired {
		t.Fatalf("abandoned sequence's callback must never fire")
	}
	if completions != 1 {
		t.Fatalf("expected replacement completion, got %d", completions)
	}
}

func TestEmptySequenceCompletesImmediately(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)

	completions := 0
	player.Start(domain.DialogueSequence{ID: "empty"}, func() { completions++ })

	if completions != 1 {
		t.Fatalf("expected empty sequence to complete immediately, got %d", completions)
	}
	if player.Presenting() {
		t.Fatalf("expected player to stay idle")
	}
}

func TestFinishedEventCarriesSequenceID(t *testing.T) {
	bus := event.NewBus()
	player := NewPlayer(bus)
	event.Subscribe(bus, func(event.LineShown) { player.MarkRevealed() })

	var finished []string
	event.Subscribe(bus, func(msg event.DialogueFinished) { finished = append(finished, msg.SequenceID) })

	player.Start(threeLines(), nil)
	player.Advance()
	player.Advance()
	player.Advance()

	if len(finished) != 1 || finished[0] != "intro" {
		t.Fatalf("expected one finish for intro, got %v", finished)
	}
}
