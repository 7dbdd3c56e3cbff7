// Package quiz implements the question state machine: seeded shuffling with
// index remapping, answer collection for both question kinds, submission
// validation, and the append-only completion record.
package quiz

import (
	"hash/fnv"
	"log"
	"math/rand"
	"sort"

	"viral-game-service/internal/domain"
	"viral-game-service/internal/event"
)

type shuffledOptions struct {
	options      []string
	correctIndex int
}

// Engine drives one quiz play-through. Per question:
// Unanswered → Selecting → Submitted → next question, or Finished after the
// last. All methods tolerate redundant input (double submit, select after
// submit, next before submit) as no-ops.
type Engine struct {
	bus  *event.Bus
	seed func(questionID string) int64

	questions  []domain.Question
	index      int
	started    bool
	finished   bool
	instanceID int

	tracker Tracker

	// Transient per-question answer state.
	selected    int
	answers     map[string]string
	placed      map[string]bool
	submitted   bool
	enabledSent bool

	// Shuffle bookkeeping, keyed by question id. Generators are re-seeded from
	// the id only when caches are cleared, so a restart reshuffles identically
	// while mid-run invalidation varies.
	generators    map[string]*rand.Rand
	optionCache   map[string]shuffledOptions
	itemCache     map[string][]domain.DragItem
	categoryCache map[string][]domain.DropCategory
}

// NewEngine creates an engine publishing on bus, with shuffles seeded from the
// question id.
func NewEngine(bus *event.Bus) *Engine {
	return NewEngineWithSeed(bus, seedFromID)
}

// NewEngineWithSeed is for tests that need to control shuffle order.
func NewEngineWithSeed(bus *event.Bus, seed func(questionID string) int64) *Engine {
	e := &Engine{bus: bus, seed: seed}
	e.ClearCaches()
	e.resetQuestionState()
	return e
}

func seedFromID(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

// Load sets the question list for this play-through. Multiple-choice questions
// are presented before drag-and-drop ones; ties keep authored order.
func (e *Engine) Load(questions []domain.Question) {
	ordered := make([]domain.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return typeRank(ordered[i].Type) < typeRank(ordered[j].Type)
	})
	e.questions = ordered
	e.index = 0
	e.started = false
	e.finished = false
	e.tracker.Reset()
	e.resetQuestionState()
}

func typeRank(t domain.QuestionType) int {
	if t == domain.MultipleChoice {
		return 0
	}
	return 1
}

// Start begins the quiz at the first question.
func (e *Engine) Start() {
	e.instanceID++
	e.started = true
	e.finished = false
	event.Publish(e.bus, event.GameStatus{Started: true, InstanceID: e.instanceID})
	if len(e.questions) == 0 {
		log.Printf("quiz: no questions loaded, finishing immediately")
		e.finish()
		return
	}
	e.index = 0
	e.begin()
}

// Restart clears all results and shuffle caches and re-enters the first
// question with fresh shuffles.
func (e *Engine) Restart() {
	e.tracker.Reset()
	e.ClearCaches()
	e.Start()
}

// ClearCaches drops all cached shuffles and their generators, forcing every
// question to reshuffle on its next presentation.
func (e *Engine) ClearCaches() {
	e.generators = make(map[string]*rand.Rand)
	e.optionCache = make(map[string]shuffledOptions)
	e.itemCache = make(map[string][]domain.DragItem)
	e.categoryCache = make(map[string][]domain.DropCategory)
}

// Finished reports whether the last question has been advanced past.
func (e *Engine) Finished() bool {
	return e.finished
}

// Index returns the current question position.
func (e *Engine) Index() int {
	return e.index
}

// Tracker exposes the completion record.
func (e *Engine) Tracker() *Tracker {
	return &e.tracker
}

// Current returns the question being presented.
func (e *Engine) Current() (domain.Question, bool) {
	if !e.started || e.finished || e.index >= len(e.questions) {
		return domain.Question{}, false
	}
	return e.questions[e.index], true
}

// ShuffledOptions returns the presentation order of the current
// multiple-choice question's options.
func (e *Engine) ShuffledOptions() ([]string, bool) {
	q, ok := e.Current()
	if !ok || q.Type != domain.MultipleChoice {
		return nil, false
	}
	cached, ok := e.optionCache[q.ID]
	return cached.options, ok
}

// ShuffledCorrectIndex returns the position of the correct option inside the
// shuffled order of the current multiple-choice question.
func (e *Engine) ShuffledCorrectIndex() (int, bool) {
	q, ok := e.Current()
	if !ok || q.Type != domain.MultipleChoice {
		return 0, false
	}
	cached, ok := e.optionCache[q.ID]
	return cached.correctIndex, ok
}

func (e *Engine) resetQuestionState() {
	e.selected = -1
	e.answers = make(map[string]string)
	e.placed = make(map[string]bool)
	e.submitted = false
	e.enabledSent = false
}

// begin prepares and presents the current question: shuffle (or reuse the
// cached shuffle), remap the correct index, reset transient answer state.
func (e *Engine) begin() {
	q := e.questions[e.index]
	e.resetQuestionState()

	shown := event.QuestionShown{
		Number:   e.index + 1,
		Total:    len(e.questions),
		Question: q,
	}
	switch q.Type {
	case domain.MultipleChoice:
		shown.Options = e.shuffleOptions(q)
	case domain.DragAndDrop:
		shown.Items = e.shuffleItems(q)
		shown.Categories = e.shuffleCategories(q)
	}
	event.Publish(e.bus, shown)

	// Degenerate question with nothing to pair: submission is trivially open.
	e.checkSubmitEnabled()
}

func (e *Engine) rng(questionID string) *rand.Rand {
	if rnd, ok := e.generators[questionID]; ok {
		return rnd
	}
	rnd := rand.New(rand.NewSource(e.seed(questionID)))
	e.generators[questionID] = rnd
	return rnd
}

func (e *Engine) shuffleOptions(q domain.Question) []string {
	if cached, ok := e.optionCache[q.ID]; ok {
		return cached.options
	}
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	fisherYates(e.rng(q.ID), len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// Remap the correct index by locating the original correct option string
	// in the shuffled order.
	correct := q.Options[q.CorrectIndex]
	correctIndex := -1
	for i, opt := range options {
		if opt == correct {
			correctIndex = i
			break
		}
	}
	e.optionCache[q.ID] = shuffledOptions{options: options, correctIndex: correctIndex}
	return options
}

func (e *Engine) shuffleItems(q domain.Question) []domain.DragItem {
	if cached, ok := e.itemCache[q.ID]; ok {
		return cached
	}
	items := make([]domain.DragItem, len(q.Items))
	copy(items, q.Items)
	if q.ShuffleItems() {
		fisherYates(e.rng(q.ID), len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
	e.itemCache[q.ID] = items
	return items
}

func (e *Engine) shuffleCategories(q domain.Question) []domain.DropCategory {
	if cached, ok := e.categoryCache[q.ID]; ok {
		return cached
	}
	categories := make([]domain.DropCategory, len(q.Categories))
	copy(categories, q.Categories)
	if q.ShuffleCategories() {
		fisherYates(e.rng(q.ID), len(categories), func(i, j int) {
			categories[i], categories[j] = categories[j], categories[i]
		})
	}
	e.categoryCache[q.ID] = categories
	return categories
}

func fisherYates(rnd *rand.Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		swap(i, j)
	}
}

// SelectOption records the selection for a multiple-choice question. Indices
// refer to the shuffled presentation order. Out-of-range or wrong-kind input
// is logged and ignored.
func (e *Engine) SelectOption(index int) {
	q, ok := e.Current()
	if !ok || e.submitted {
		return
	}
	if q.Type != domain.MultipleChoice {
		log.Printf("quiz: option select on non-choice question %q", q.ID)
		return
	}
	if index < 0 || index >= len(q.Options) {
		log.Printf("quiz: option index %d out of range for question %q", index, q.ID)
		return
	}
	e.selected = index
	e.checkSubmitEnabled()
}

// RecordPairing upserts the pairing for a drag item. An empty category id
// removes the pairing (the item went back to the tray).
func (e *Engine) RecordPairing(itemID, categoryID string) {
	q, ok := e.Current()
	if !ok || e.submitted {
		return
	}
	if q.Type != domain.DragAndDrop {
		log.Printf("quiz: pairing on non-drag question %q", q.ID)
		return
	}
	if itemID == "" {
		log.Printf("quiz: pairing with empty item id on question %q", q.ID)
		return
	}
	if categoryID == "" {
		delete(e.answers, itemID)
		delete(e.placed, itemID)
	} else {
		e.answers[itemID] = categoryID
		e.placed[itemID] = true
	}
	e.checkSubmitEnabled()
}

// RecordPlacement is the physical drop signal: the presentation layer reports
// that an item landed in (or left) some drop zone, independent of which
// pairing event fired. It feeds the placement leg of the submit-enable check.
func (e *Engine) RecordPlacement(itemID string, inZone bool) {
	q, ok := e.Current()
	if !ok || e.submitted || q.Type != domain.DragAndDrop {
		return
	}
	if inZone {
		e.placed[itemID] = true
	} else {
		delete(e.placed, itemID)
	}
	e.checkSubmitEnabled()
}

// CanSubmit reports whether the current question has enough of an answer.
// For drag-and-drop this is the OR of three independent checks (count,
// physical placement, expected ids): the original relied on any one of them
// as a failsafe against missed pairing events, and that permissive policy is
// kept rather than picking a single authoritative check.
func (e *Engine) CanSubmit() bool {
	q, ok := e.Current()
	if !ok {
		return false
	}
	switch q.Type {
	case domain.MultipleChoice:
		return e.selected >= 0
	case domain.DragAndDrop:
		expected := len(q.Items)
		if expected == 0 {
			return true
		}
		countComplete := len(e.answers) >= expected
		physicalComplete := len(e.placed) >= expected
		mapping := q.CorrectMapping()
		expectedComplete := len(mapping) > 0
		for itemID := range mapping {
			if _, ok := e.answers[itemID]; !ok {
				expectedComplete = false
				break
			}
		}
		return countComplete || physicalComplete || expectedComplete
	}
	return false
}

func (e *Engine) checkSubmitEnabled() {
	if e.enabledSent || !e.CanSubmit() {
		return
	}
	q, _ := e.Current()
	e.enabledSent = true
	event.Publish(e.bus, event.SubmitEnabled{QuestionID: q.ID})
}

// Submit validates the collected answer, appends the result, and publishes
// feedback with the matching explanation. Submitting twice, or with nothing
// selected, is a no-op.
func (e *Engine) Submit() {
	q, ok := e.Current()
	if !ok || e.submitted {
		return
	}
	if !e.CanSubmit() {
		log.Printf("quiz: submit before any answer on question %q", q.ID)
		return
	}

	correct := false
	switch q.Type {
	case domain.MultipleChoice:
		cached := e.optionCache[q.ID]
		correct = e.selected == cached.correctIndex
	case domain.DragAndDrop:
		correct = matchesMapping(e.answers, q.CorrectMapping())
	}
	e.submitted = true
	e.tracker.Record(correct)

	explanation := q.IncorrectExplanation
	if correct {
		explanation = q.CorrectExplanation
	}
	event.Publish(e.bus, event.Feedback{Correct: correct, Explanation: explanation})
}

// matchesMapping requires exact key-for-key equality with matching size.
func matchesMapping(answers, mapping map[string]string) bool {
	if len(answers) != len(mapping) {
		return false
	}
	for itemID, categoryID := range mapping {
		if answers[itemID] != categoryID {
			return false
		}
	}
	return true
}

// Next moves to the following question, or finishes the quiz after the last
// one. It does nothing until the current question has been submitted.
func (e *Engine) Next() {
	if !e.started || e.finished || !e.submitted {
		return
	}
	if e.index+1 < len(e.questions) {
		e.index++
		e.begin()
		return
	}
	e.finish()
}

func (e *Engine) finish() {
	e.finished = true
	summary := e.tracker.Summary()
	event.Publish(e.bus, event.QuizFinished{Summary: summary})
	event.Publish(e.bus, event.GameStatus{
		Finished:   true,
		Won:        summary.AllCorrect,
		InstanceID: e.instanceID,
	})
}
