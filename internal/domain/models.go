package domain

// PortraitRef is an opaque handle to a presentation-layer portrait asset.
// The core never interprets it beyond passing it through to clients.
type PortraitRef string

// DialogueLine is a single authored line of dialogue.
type DialogueLine struct {
	Speaker  string      `json:"speaker" yaml:"speaker"`
	Text     string      `json:"text" yaml:"text"`
	Portrait PortraitRef `json:"portrait,omitempty" yaml:"portrait,omitempty"`

	// OnAfter runs once when the player advances past this line. Never
	// serialized; attached at runtime on a copied line, not on authored data.
	OnAfter func() `json:"-" yaml:"-"`
}

// DialogueSequence is a named, ordered list of dialogue lines.
type DialogueSequence struct {
	ID    string         `json:"id" yaml:"id"`
	Lines []DialogueLine `json:"lines" yaml:"lines"`
}

// QuestionType discriminates the two supported question kinds.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	DragAndDrop    QuestionType = "drag_and_drop"
)

// DragItem is a draggable scenario card in a drag-and-drop question.
type DragItem struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// DropCategory is a category zone a drag item can be paired with.
type DropCategory struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Pair associates a drag item with its category by stable ids.
type Pair struct {
	ItemID     string `json:"itemId" yaml:"itemId"`
	CategoryID string `json:"categoryId" yaml:"categoryId"`
}

// Question models a quiz question. A single struct carries both kinds; Type
// decides which fields are meaningful, matching how the authored data is shaped.
type Question struct {
	ID       string       `json:"id" yaml:"id"`
	Type     QuestionType `json:"type" yaml:"type"`
	Prompt   string       `json:"prompt" yaml:"prompt"`
	Scenario string       `json:"scenario,omitempty" yaml:"scenario,omitempty"`

	// Multiple choice.
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex,omitempty" yaml:"correctIndex,omitempty"`

	// Drag and drop.
	Items        []DragItem     `json:"items,omitempty" yaml:"items,omitempty"`
	Categories   []DropCategory `json:"categories,omitempty" yaml:"categories,omitempty"`
	CorrectPairs []Pair         `json:"correctPairs,omitempty" yaml:"correctPairs,omitempty"`

	// Presentation-order randomization. Items default to shuffled, categories
	// to stable; authored data can flip either.
	RandomizeItems      *bool `json:"randomizeItems,omitempty" yaml:"randomizeItems,omitempty"`
	RandomizeCategories *bool `json:"randomizeCategories,omitempty" yaml:"randomizeCategories,omitempty"`

	CorrectExplanation   string `json:"correctExplanation" yaml:"correctExplanation"`
	IncorrectExplanation string `json:"incorrectExplanation" yaml:"incorrectExplanation"`
}

// ShuffleItems reports whether item presentation order should be randomized.
func (q Question) ShuffleItems() bool {
	if q.RandomizeItems == nil {
		return true
	}
	return *q.RandomizeItems
}

// ShuffleCategories reports whether category order should be randomized.
func (q Question) ShuffleCategories() bool {
	if q.RandomizeCategories == nil {
		return false
	}
	return *q.RandomizeCategories
}

// CorrectMapping returns the answer key as itemID -> categoryID.
func (q Question) CorrectMapping() map[string]string {
	mapping := make(map[string]string, len(q.CorrectPairs))
	for _, pair := range q.CorrectPairs {
		mapping[pair.ItemID] = pair.CategoryID
	}
	return mapping
}

// Content is the full authored data set for one game (chapter/minigame),
// loaded read-only at startup.
type Content struct {
	GameID    string             `json:"gameId" yaml:"gameId"`
	Sequences []DialogueSequence `json:"sequences" yaml:"sequences"`
	Questions []Question         `json:"questions" yaml:"questions"`

	// Optional follow-up sequences played after the quiz, chosen by outcome.
	SuccessSequence string `json:"successSequence,omitempty" yaml:"successSequence,omitempty"`
	FailureSequence string `json:"failureSequence,omitempty" yaml:"failureSequence,omitempty"`
}

// Summary is the final quiz score view.
type Summary struct {
	CorrectCount int    `json:"correctCount"`
	TotalCount   int    `json:"totalCount"`
	AllCorrect   bool   `json:"allCorrect"`
	Score        string `json:"score"` // "{correct}/{total}"
}
