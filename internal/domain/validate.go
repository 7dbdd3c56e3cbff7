package domain

import "fmt"

// Diagnostic describes one invalid piece of authored content found at load time.
type Diagnostic struct {
	QuestionID string
	Reason     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("question %q: %s", d.QuestionID, d.Reason)
}

// ValidateQuestion checks authored invariants for a single question.
func ValidateQuestion(q Question) []Diagnostic {
	var diags []Diagnostic
	report := func(format string, args ...any) {
		diags = append(diags, Diagnostic{QuestionID: q.ID, Reason: fmt.Sprintf(format, args...)})
	}

	if q.Prompt == "" {
		report("empty prompt")
	}

	switch q.Type {
	case MultipleChoice:
		if len(q.Options) < 2 {
			report("needs at least 2 options, has %d", len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			report("correct index %d out of range [0,%d)", q.CorrectIndex, len(q.Options))
		}
	case DragAndDrop:
		items := make(map[string]bool, len(q.Items))
		for _, item := range q.Items {
			items[item.ID] = true
		}
		categories := make(map[string]bool, len(q.Categories))
		for _, cat := range q.Categories {
			categories[cat.ID] = true
		}
		mapped := make(map[string]bool, len(q.CorrectPairs))
		for _, pair := range q.CorrectPairs {
			if mapped[pair.ItemID] {
				report("item %q mapped more than once", pair.ItemID)
			}
			mapped[pair.ItemID] = true
			if !items[pair.ItemID] {
				report("pair references unknown item %q", pair.ItemID)
			}
			if !categories[pair.CategoryID] {
				report("pair references unknown category %q", pair.CategoryID)
			}
		}
		for _, item := range q.Items {
			if !mapped[item.ID] {
				report("item %q has no mapping", item.ID)
			}
		}
	default:
		report("unknown question type %q", q.Type)
	}
	return diags
}

// ValidateContent filters out invalid questions and returns the surviving
// content plus diagnostics for everything dropped. A question with problems is
// excluded rather than aborting the whole session; if nothing survives, the
// fallback question keeps the game playable.
func ValidateContent(content Content) (Content, []Diagnostic) {
	var diags []Diagnostic
	valid := make([]Question, 0, len(content.Questions))
	for _, q := range content.Questions {
		if qDiags := ValidateQuestion(q); len(qDiags) > 0 {
			diags = append(diags, qDiags...)
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 && len(content.Questions) > 0 {
		valid = []Question{FallbackQuestion()}
	}
	content.Questions = valid
	return content, diags
}

// FallbackQuestion is served when no authored question survives validation.
func FallbackQuestion() Question {
	return Question{
		ID:     "fallback-001",
		Type:   MultipleChoice,
		Prompt: "Apa yang dimaksud dengan disinformasi?",
		Options: []string{
			"Informasi yang salah tanpa sengaja",
			"Informasi palsu yang sengaja disebarkan untuk menipu",
			"Informasi benar yang disebarkan dengan niat jahat",
			"Informasi yang tidak jelas sumbernya",
		},
		CorrectIndex:         1,
		CorrectExplanation:   "Disinformasi adalah informasi palsu yang sengaja disebarkan untuk menipu atau menyesatkan orang lain.",
		IncorrectExplanation: "Disinformasi adalah informasi palsu yang sengaja disebarkan untuk menipu atau menyesatkan orang lain.",
	}
}
