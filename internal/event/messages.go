package event

import "viral-game-service/internal/domain"

// DialogueRequested asks the session to play a named sequence. OnComplete, if
// set, is attached to the last line of the played copy.
type DialogueRequested struct {
	SequenceID string
	OnComplete func()
}

// LineShown carries one dialogue line to the presentation layer.
type LineShown struct {
	Speaker  string             `json:"speaker"`
	Text     string             `json:"text"`
	Portrait domain.PortraitRef `json:"portrait,omitempty"`
	Index    int                `json:"index"`
	Total    int                `json:"total"`
}

// LineRevealed signals that the current line's reveal was fast-forwarded and
// the full text should be displayed at once.
type LineRevealed struct {
	Index int `json:"index"`
}

// DialogueFinished signals that a sequence has been advanced past its last line.
type DialogueFinished struct {
	SequenceID string `json:"sequenceId"`
}

// QuestionShown carries the current question in presentation order: options
// and items are already shuffled, categories shuffled only when authored so.
type QuestionShown struct {
	Number     int                   `json:"number"` // 1-based
	Total      int                   `json:"total"`
	Question   domain.Question       `json:"question"`
	Options    []string              `json:"options,omitempty"`
	Items      []domain.DragItem     `json:"items,omitempty"`
	Categories []domain.DropCategory `json:"categories,omitempty"`
}

// SubmitEnabled signals that the current question has enough of an answer to
// be submitted.
type SubmitEnabled struct {
	QuestionID string `json:"questionId"`
}

// Feedback reports the outcome of one submission.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// QuizFinished reports the final score once the last question is answered.
type QuizFinished struct {
	Summary domain.Summary `json:"summary"`
}

// GameStatus mirrors the minigame lifecycle broadcast: set Started when play
// begins, Finished+Won when it ends. InstanceID disambiguates repeated plays.
type GameStatus struct {
	Started    bool `json:"started"`
	Won        bool `json:"won"`
	Finished   bool `json:"finished"`
	InstanceID int  `json:"instanceId"`
}
