package dialogue

import (
	"log"

	"viral-game-service/internal/domain"
	"viral-game-service/internal/event"
)

// Player presents one dialogue sequence line by line, driven by discrete
// advance signals from the presentation layer. Idle → Presenting → Idle,
// re-enterable. Only one sequence is active at a time: starting a new one
// abandons the previous state, and any callback attached to the abandoned
// copy never fires.
type Player struct {
	bus *event.Bus

	sequenceID string
	lines      []domain.DialogueLine
	index      int
	presenting bool
	revealing  bool
}

// NewPlayer creates an idle player publishing on bus.
func NewPlayer(bus *event.Bus) *Player {
	return &Player{bus: bus}
}

// Presenting reports whether a sequence is mid-playthrough.
func (p *Player) Presenting() bool {
	return p.presenting
}

// Index returns the current line index, 0 when idle.
func (p *Player) Index() int {
	return p.index
}

// Start begins presenting seq from its first line. The line list is copied so
// the stored sequence is never mutated; onComplete, when given, replaces the
// OnAfter of the last copied line, including any authored one.
func (p *Player) Start(seq domain.DialogueSequence, onComplete func()) {
	if len(seq.Lines) == 0 {
		log.Printf("dialogue: sequence %q has no lines", seq.ID)
		if onComplete != nil {
			onComplete()
		}
		return
	}

	lines := make([]domain.DialogueLine, len(seq.Lines))
	copy(lines, seq.Lines)
	if onComplete != nil {
		lines[len(lines)-1].OnAfter = onComplete
	}

	p.sequenceID = seq.ID
	p.lines = lines
	p.index = 0
	p.presenting = true
	p.showCurrent()
}

// Advance is the single continue signal. While the current line is still
// revealing it fast-forwards the reveal instead of moving on (a tap during
// the typewriter completes the text). Once revealed, it shows the next line,
// or past the last line fires its OnAfter and returns to idle. Advancing an
// idle player is a no-op.
func (p *Player) Advance() {
	if !p.presenting {
		return
	}
	if p.revealing {
		p.revealing = false
		event.Publish(p.bus, event.LineRevealed{Index: p.index})
		return
	}
	if p.index+1 < len(p.lines) {
		p.index++
		p.showCurrent()
		return
	}

	onAfter := p.lines[p.index].OnAfter
	sequenceID := p.sequenceID
	p.presenting = false
	p.revealing = false
	p.lines = nil
	p.index = 0
	p.sequenceID = ""

	if onAfter != nil {
		onAfter()
	}
	event.Publish(p.bus, event.DialogueFinished{SequenceID: sequenceID})
}

// MarkRevealed records that the presentation layer finished revealing the
// current line on its own, so the next Advance moves on instead of
// fast-forwarding.
func (p *Player) MarkRevealed() {
	if !p.presenting {
		return
	}
	p.revealing = false
}

func (p *Player) showCurrent() {
	line := p.lines[p.index]
	p.revealing = true
	event.Publish(p.bus, event.LineShown{
		Speaker:  line.Speaker,
		Text:     line.Text,
		Portrait: line.Portrait,
		Index:    p.index,
		Total:    len(p.lines),
	})
}
