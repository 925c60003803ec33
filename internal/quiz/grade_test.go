package quiz

import (
	"errors"
	"testing"

	"github.com/quizdeck/quizdeck/internal/content"
)

func intPtr(v int) *int { return &v }

func testSubcategory() *content.SubcategoryIndex {
	return &content.SubcategoryIndex{
		Slug: "lvm",
		Meta: content.SubcategoryMeta{Title: "LVM"},
		Questions: []content.Question{
			{
				ID:           "single-1",
				Prompt:       "Pick one",
				Options:      []string{"a", "b", "c"},
				CorrectIndex: intPtr(1),
			},
			{
				ID:             "legacy-1",
				Prompt:         "Older convention",
				Options:        []string{"a", "b"},
				CorrectIndices: []int{0},
			},
			{
				ID:             "multi-1",
				Type:           content.TypeMultiple,
				Prompt:         "Pick some",
				Options:        []string{"a", "b", "c", "d"},
				CorrectIndices: []int{0, 2},
			},
			{
				ID:           "order-1",
				Type:         content.TypeOrder,
				Prompt:       "Sort",
				Items:        []string{"x", "y", "z"},
				CorrectOrder: []int{2, 0, 1},
			},
			{
				ID:           "order-distractor",
				Type:         content.TypeOrder,
				Prompt:       "Sort, one item is noise",
				Items:        []string{"x", "y", "z"},
				CorrectOrder: []int{1, 0},
			},
		},
	}
}

func TestVerifySingle(t *testing.T) {
	sub := testSubcategory()
	sum, err := Verify(sub, []Answer{{QuestionID: "single-1", SelectedIndex: intPtr(1)}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sum.Correct != 1 || sum.Answered != 1 {
		t.Errorf("Summary = %+v, want 1 correct of 1", sum)
	}
	if sum.TotalQuestions != 5 {
		t.Errorf("TotalQuestions = %d, want 5", sum.TotalQuestions)
	}
	r := sum.Results[0]
	if !r.IsCorrect || r.CorrectAnswer != 1 || r.SelectedAnswer != 1 {
		t.Errorf("Result = %+v", r)
	}
}

func TestVerifySingleIncorrect(t *testing.T) {
	sub := testSubcategory()
	sum, err := Verify(sub, []Answer{{QuestionID: "single-1", SelectedIndex: intPtr(0)}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sum.Correct != 0 {
		t.Errorf("Correct = %d, want 0", sum.Correct)
	}
	if sum.Results[0].CorrectAnswer != 1 {
		t.Errorf("CorrectAnswer = %v, want 1", sum.Results[0].CorrectAnswer)
	}
}

func TestVerifyLegacySingleViaCorrectIndices(t *testing.T) {
	sub := testSubcategory()
	sum, err := Verify(sub, []Answer{{QuestionID: "legacy-1", SelectedIndex: intPtr(0)}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !sum.Results[0].IsCorrect {
		t.Error("legacy correctIndices question graded incorrect for right answer")
	}
}

func TestVerifyMultipleSetSemantics(t *testing.T) {
	sub := testSubcategory()
	tests := []struct {
		name     string
		selected []int
		want     bool
	}{
		{"exact order", []int{0, 2}, true},
		{"reversed order", []int{2, 0}, true},
		{"missing one", []int{0}, false},
		{"extra one", []int{0, 2, 3}, false},
		{"duplicated correct index", []int{0, 0, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := Verify(sub, []Answer{{QuestionID: "multi-1", SelectedIndices: tt.selected}})
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if sum.Results[0].IsCorrect != tt.want {
				t.Errorf("IsCorrect = %v, want %v for %v", sum.Results[0].IsCorrect, tt.want, tt.selected)
			}
		})
	}
}

func TestVerifyOrder(t *testing.T) {
	sub := testSubcategory()
	sum, err := Verify(sub, []Answer{{QuestionID: "order-1", SelectedOrder: []int{2, 0, 1}}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !sum.Results[0].IsCorrect {
		t.Error("exact order graded incorrect")
	}

	sum, err = Verify(sub, []Answer{{QuestionID: "order-1", SelectedOrder: []int{0, 2, 1}}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sum.Results[0].IsCorrect {
		t.Error("wrong order graded correct")
	}
}

func TestVerifyOrderWithDistractorExpectsCorrectOrderLength(t *testing.T) {
	sub := testSubcategory()

	// Submission must match len(correctOrder), not len(items).
	if _, err := Verify(sub, []Answer{{QuestionID: "order-distractor", SelectedOrder: []int{0, 1, 2}}}); err == nil {
		t.Fatal("Verify() accepted selectedOrder sized to items")
	}

	sum, err := Verify(sub, []Answer{{QuestionID: "order-distractor", SelectedOrder: []int{1, 0}}})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !sum.Results[0].IsCorrect {
		t.Error("correct distractor order graded incorrect")
	}
}

func TestVerifyBatchRejections(t *testing.T) {
	sub := testSubcategory()
	tests := []struct {
		name    string
		answers []Answer
	}{
		{"empty batch", nil},
		{"duplicate id", []Answer{
			{QuestionID: "single-1", SelectedIndex: intPtr(0)},
			{QuestionID: "single-1", SelectedIndex: intPtr(1)},
		}},
		{"unknown id", []Answer{{QuestionID: "nope", SelectedIndex: intPtr(0)}}},
		{"single without index", []Answer{{QuestionID: "single-1"}}},
		{"single index out of range", []Answer{{QuestionID: "single-1", SelectedIndex: intPtr(3)}}},
		{"multiple index out of range", []Answer{{QuestionID: "multi-1", SelectedIndices: []int{0, 4}}}},
		{"order without order", []Answer{{QuestionID: "order-1", SelectedIndices: []int{0}}}},
		{"order length mismatch", []Answer{{QuestionID: "order-1", SelectedOrder: []int{0, 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(sub, tt.answers)
			var berr *BatchError
			if !errors.As(err, &berr) {
				t.Fatalf("Verify() error = %v, want *BatchError", err)
			}
		})
	}
}

func TestVerifyBatchIsAllOrNothing(t *testing.T) {
	sub := testSubcategory()
	// One valid answer plus one invalid one: nothing is graded.
	_, err := Verify(sub, []Answer{
		{QuestionID: "single-1", SelectedIndex: intPtr(1)},
		{QuestionID: "unknown", SelectedIndex: intPtr(0)},
	})
	var berr *BatchError
	if !errors.As(err, &berr) {
		t.Fatalf("Verify() error = %v, want *BatchError", err)
	}
}

func TestVerifyPathNotFound(t *testing.T) {
	idx := &content.ContentIndex{
		Themes: map[string]*content.ThemeIndex{
			"rhcsa": {
				Slug: "rhcsa",
				Categories: map[string]*content.CategoryIndex{
					"storage": {
						Slug:          "storage",
						Subcategories: map[string]*content.SubcategoryIndex{"lvm": testSubcategory()},
					},
				},
			},
		},
	}
	answers := []Answer{{QuestionID: "single-1", SelectedIndex: intPtr(1)}}

	tests := []struct {
		name                 string
		theme, category, sub string
		wantErr              bool
	}{
		{"ok", "rhcsa", "storage", "lvm", false},
		{"bad theme", "nope", "storage", "lvm", true},
		{"bad category", "rhcsa", "nope", "lvm", true},
		{"bad subcategory", "rhcsa", "storage", "nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPath(idx, tt.theme, tt.category, tt.sub, answers)
			if tt.wantErr {
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("VerifyPath() error = %v, want *NotFoundError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyPath() error = %v", err)
			}
		})
	}
}
