package quiz

import (
	"fmt"

	"viral-game-service/internal/domain"
)

// Tracker is the append-only record of per-question pass/fail results. The
// score view is derived on demand rather than stored, so it cannot drift from
// the result list. It never resets on its own; only Engine.Restart clears it.
type Tracker struct {
	results []bool
}

// Record appends one result.
func (t *Tracker) Record(correct bool) {
	t.results = append(t.results, correct)
}

// Reset drops all recorded results.
func (t *Tracker) Reset() {
	t.results = nil
}

// CorrectCount returns how many recorded results were correct.
func (t *Tracker) CorrectCount() int {
	count := 0
	for _, correct := range t.results {
		if correct {
			count++
		}
	}
	return count
}

// Total returns the number of recorded results.
func (t *Tracker) Total() int {
	return len(t.results)
}

// AllCorrect reports whether every recorded result was correct. An empty
// record is not a pass.
func (t *Tracker) AllCorrect() bool {
	return t.Total() > 0 && t.CorrectCount() == t.Total()
}

// Summary builds the final score view, including the templated score string.
func (t *Tracker) Summary() domain.Summary {
	correct := t.CorrectCount()
	total := t.Total()
	return domain.Summary{
		CorrectCount: correct,
		TotalCount:   total,
		AllCorrect:   t.AllCorrect(),
		Score:        fmt.Sprintf("%d/%d", correct, total),
	}
}
