package quiz

import (
	"fmt"
	"slices"

	"github.com/quizdeck/quizdeck/internal/content"
)

// Answer is one submitted answer. Exactly one of the Selected fields should
// be populated, matching the question's type.
type Answer struct {
	QuestionID      string `json:"questionId"`
	SelectedIndex   *int   `json:"selectedIndex,omitempty"`
	SelectedIndices []int  `json:"selectedIndices,omitempty"`
	SelectedOrder   []int  `json:"selectedOrder,omitempty"`
}

// Result echoes one graded answer together with the authoritative correct
// answer for client display.
type Result struct {
	QuestionID    string `json:"questionId"`
	SelectedAnswer any   `json:"selectedAnswer"`
	CorrectAnswer  any   `json:"correctAnswer"`
	IsCorrect      bool  `json:"isCorrect"`
}

// Summary is the outcome of grading a whole batch.
type Summary struct {
	TotalQuestions int      `json:"totalQuestions"`
	Answered       int      `json:"answered"`
	Correct        int      `json:"correct"`
	Results        []Result `json:"results"`
}

// NotFoundError reports a theme/category/subcategory path that does not
// exist in the current index.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// BatchError rejects an entire verification batch: duplicate or unknown
// question ids, or a structurally invalid answer. Nothing in the batch is
// graded.
type BatchError struct {
	msg string
}

func (e *BatchError) Error() string { return e.msg }

func batchErrorf(format string, args ...any) *BatchError {
	return &BatchError{msg: fmt.Sprintf(format, args...)}
}

// VerifyPath resolves the subcategory in the given index and grades the
// batch against its authoritative question set.
func VerifyPath(idx *content.ContentIndex, theme, category, sub string, answers []Answer) (*Summary, error) {
	t, ok := idx.Themes[theme]
	if !ok {
		return nil, &NotFoundError{msg: fmt.Sprintf("unknown theme '%s'", theme)}
	}
	c, ok := t.Categories[category]
	if !ok {
		return nil, &NotFoundError{msg: fmt.Sprintf("unknown category '%s' for theme '%s'", category, theme)}
	}
	s, ok := c.Subcategories[sub]
	if !ok {
		return nil, &NotFoundError{msg: fmt.Sprintf("unknown subcategory '%s' for %s/%s", sub, theme, category)}
	}
	return Verify(s, answers)
}

// Verify grades a batch of answers against a subcategory's question set.
// The server is the sole source of truth: nothing submitted by the client
// influences what counts as correct. Batches are all-or-nothing — any
// precondition failure rejects the whole batch with no partial grading.
func Verify(sub *content.SubcategoryIndex, answers []Answer) (*Summary, error) {
	if len(answers) == 0 {
		return nil, batchErrorf("answers must not be empty")
	}

	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return nil, batchErrorf("duplicate questionId '%s'", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}

	// Structural validation for the whole batch before grading anything.
	for _, a := range answers {
		q, ok := sub.Question(a.QuestionID)
		if !ok {
			return nil, batchErrorf("unknown questionId '%s'", a.QuestionID)
		}
		if err := checkAnswerShape(q, a); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(answers))
	correct := 0
	for _, a := range answers {
		q, _ := sub.Question(a.QuestionID)
		r := grade(q, a)
		if r.IsCorrect {
			correct++
		}
		results = append(results, r)
	}

	return &Summary{
		TotalQuestions: len(sub.Questions),
		Answered:       len(answers),
		Correct:        correct,
		Results:        results,
	}, nil
}

func checkAnswerShape(q content.Question, a Answer) error {
	switch q.Kind() {
	case content.TypeOrder:
		if a.SelectedOrder == nil || q.Items == nil {
			return batchErrorf("invalid order answer for '%s'", a.QuestionID)
		}
		// correctOrder may be shorter than items when distractors exist;
		// the submission must match its length exactly, never be truncated.
		expected := len(q.CorrectOrder)
		if expected == 0 {
			expected = len(q.Items)
		}
		if len(a.SelectedOrder) != expected {
			return batchErrorf("selectedOrder length mismatch for '%s' (expected %d, got %d)",
				a.QuestionID, expected, len(a.SelectedOrder))
		}
	case content.TypeMultiple:
		if a.SelectedIndices == nil || q.Options == nil {
			return batchErrorf("invalid multiple choice answer for '%s'", a.QuestionID)
		}
		for _, idx := range a.SelectedIndices {
			if idx >= len(q.Options) {
				return batchErrorf("selectedIndex out of range for '%s'", a.QuestionID)
			}
		}
	default:
		if a.SelectedIndex == nil || q.Options == nil {
			return batchErrorf("invalid single choice answer for '%s'", a.QuestionID)
		}
		if *a.SelectedIndex >= len(q.Options) {
			return batchErrorf("selectedIndex out of range for '%s'", a.QuestionID)
		}
	}
	return nil
}

func grade(q content.Question, a Answer) Result {
	r := Result{QuestionID: a.QuestionID, SelectedAnswer: selectedAnswer(a)}

	switch q.Kind() {
	case content.TypeOrder:
		r.CorrectAnswer = q.CorrectOrder
		r.IsCorrect = slices.Equal(a.SelectedOrder, q.CorrectOrder)
	case content.TypeMultiple:
		r.CorrectAnswer = q.CorrectIndices
		// Set equality: no extra, no missing. Size equality plus one-way
		// containment is enough under set semantics.
		selected := make(map[int]struct{}, len(a.SelectedIndices))
		for _, idx := range a.SelectedIndices {
			selected[idx] = struct{}{}
		}
		r.IsCorrect = len(selected) == len(q.CorrectIndices)
		for _, idx := range q.CorrectIndices {
			if _, ok := selected[idx]; !ok {
				r.IsCorrect = false
				break
			}
		}
	default:
		want, ok := q.SingleAnswer()
		if ok {
			r.CorrectAnswer = want
			r.IsCorrect = a.SelectedIndex != nil && *a.SelectedIndex == want
		}
	}
	return r
}

func selectedAnswer(a Answer) any {
	switch {
	case a.SelectedIndex != nil:
		return *a.SelectedIndex
	case a.SelectedIndices != nil:
		return a.SelectedIndices
	default:
		return a.SelectedOrder
	}
}
