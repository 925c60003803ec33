// Package content builds and maintains the in-memory index of quiz and
// flashcard material loaded from a YAML content tree.
package content

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ThemeMeta describes a theme directory (themes/<theme>/meta.yaml).
type ThemeMeta struct {
	Title       string `yaml:"title" json:"title,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// CategoryMeta describes a category directory.
type CategoryMeta struct {
	Title       string `yaml:"title" json:"title,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// SubcategoryMeta describes a subcategory directory. Title is required.
type SubcategoryMeta struct {
	Title            string `yaml:"title" json:"title"`
	EstimatedTimeMin *int   `yaml:"estimatedTimeMin" json:"estimatedTimeMin,omitempty"`
	Description      string `yaml:"description" json:"description,omitempty"`
}

// QuestionType discriminates the three question variants.
type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
	TypeOrder    QuestionType = "order"
)

// Question is one quiz question as authored in questions.yaml.
//
// The fields present depend on the type: single and multiple use Options
// with CorrectIndex/CorrectIndices, order uses Items with CorrectOrder.
// The validator guarantees the combination is consistent before a Question
// reaches the index.
type Question struct {
	ID             string       `yaml:"id" json:"id"`
	Type           QuestionType `yaml:"type" json:"type,omitempty"`
	Prompt         string       `yaml:"prompt" json:"prompt"`
	Options        []string     `yaml:"options" json:"options,omitempty"`
	CorrectIndex   *int         `yaml:"correctIndex" json:"correctIndex,omitempty"`
	CorrectIndices []int        `yaml:"correctIndices" json:"correctIndices,omitempty"`
	Items          []string     `yaml:"items" json:"items,omitempty"`
	CorrectOrder   []int        `yaml:"correctOrder" json:"correctOrder,omitempty"`
	Images         []string     `yaml:"images" json:"images,omitempty"`
	Explanation    string       `yaml:"explanation" json:"explanation,omitempty"`
}

// Kind returns the question type, defaulting to single when unset.
func (q Question) Kind() QuestionType {
	if q.Type == "" {
		return TypeSingle
	}
	return q.Type
}

// SingleAnswer returns the correct index of a single-choice question,
// falling back to the sole element of CorrectIndices for content authored
// in the older convention.
func (q Question) SingleAnswer() (int, bool) {
	if q.CorrectIndex != nil {
		return *q.CorrectIndex, true
	}
	if len(q.CorrectIndices) == 1 {
		return q.CorrectIndices[0], true
	}
	return 0, false
}

// RichBlock is a flashcard field that is either a plain string or a small
// object with optional title/code/text keys.
type RichBlock struct {
	Plain  string `json:"-"`
	Title  string `json:"title,omitempty"`
	Code   string `json:"code,omitempty"`
	Text   string `json:"text,omitempty"`
	scalar bool
}

// IsScalar reports whether the block was authored as a plain string.
func (b RichBlock) IsScalar() bool { return b.scalar }

// Empty reports whether an object-shaped block has no populated key.
func (b RichBlock) Empty() bool {
	return !b.scalar && b.Title == "" && b.Code == "" && b.Text == ""
}

func (b *RichBlock) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		b.Plain = s
		b.scalar = true
		return nil
	case yaml.MappingNode:
		var obj struct {
			Title string `yaml:"title"`
			Code  string `yaml:"code"`
			Text  string `yaml:"text"`
		}
		if err := value.Decode(&obj); err != nil {
			return err
		}
		b.Title, b.Code, b.Text = obj.Title, obj.Code, obj.Text
		return nil
	default:
		// Returned as a TypeError so the decoder folds it into the other
		// shape mismatches instead of aborting the parse.
		return &yaml.TypeError{Errors: []string{
			fmt.Sprintf("line %d: rich block must be a string or a mapping", value.Line),
		}}
	}
}

// MarshalJSON echoes the authored shape: a bare string for scalar blocks,
// an object otherwise.
func (b RichBlock) MarshalJSON() ([]byte, error) {
	if b.scalar {
		return json.Marshal(b.Plain)
	}
	type obj struct {
		Title string `json:"title,omitempty"`
		Code  string `json:"code,omitempty"`
		Text  string `json:"text,omitempty"`
	}
	return json.Marshal(obj{Title: b.Title, Code: b.Code, Text: b.Text})
}

// Flashcard is one flashcard as authored in flashcards.yaml.
type Flashcard struct {
	ID          string      `yaml:"id" json:"id"`
	Concept     *RichBlock  `yaml:"concept" json:"concept,omitempty"`
	Command     *RichBlock  `yaml:"command" json:"command,omitempty"`
	Examples    []RichBlock `yaml:"examples" json:"examples,omitempty"`
	Image       *string     `yaml:"image" json:"image,omitempty"`
	Explanation *RichBlock  `yaml:"explanation" json:"explanation,omitempty"`
}

// SubcategoryIndex is the leaf unit of the index: all quiz and flashcard
// delivery operates at this granularity.
type SubcategoryIndex struct {
	Slug       string
	Meta       SubcategoryMeta
	Questions  []Question
	Flashcards []Flashcard
}

// Question looks up a question by id.
func (s *SubcategoryIndex) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// CategoryIndex groups subcategories under a theme.
type CategoryIndex struct {
	Slug          string
	Meta          CategoryMeta
	Subcategories map[string]*SubcategoryIndex
}

// ThemeIndex is a top-level content theme.
type ThemeIndex struct {
	Slug       string
	Meta       ThemeMeta
	Categories map[string]*CategoryIndex
}

// ContentIndex is the full in-memory content tree. Nodes reachable from a
// published index are never mutated in place; the watcher replaces them
// wholesale through the Store.
type ContentIndex struct {
	Root   string
	Themes map[string]*ThemeIndex
}
