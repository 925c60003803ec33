package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// DocKind names the five document shapes the validator understands.
type DocKind string

const (
	DocTheme       DocKind = "theme"
	DocCategory    DocKind = "category"
	DocSubcategory DocKind = "subcategory"
	DocQuestion    DocKind = "question"
	DocFlashcard   DocKind = "flashcard"
)

// ValidationErrorKind distinguishes parse failures from shape failures.
// Callers map the two to different client-facing conditions.
type ValidationErrorKind string

const (
	MalformedInput  ValidationErrorKind = "malformed_input"
	SchemaViolation ValidationErrorKind = "schema_violation"
)

// Issue is one field-level validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries either a YAML parse failure or an itemized list
// of schema issues.
type ValidationError struct {
	Kind    ValidationErrorKind
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if e.Kind == MalformedInput {
		return "invalid YAML: " + e.Message
	}
	return "schema validation failed: " + SummarizeIssues(e.Issues, 5)
}

// SummarizeIssues renders issues as "path: message" pairs, truncated to
// max entries plus a count of the remainder.
func SummarizeIssues(issues []Issue, max int) string {
	var b strings.Builder
	n := len(issues)
	if n < max {
		max = n
	}
	for i := 0; i < max; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		path := issues[i].Path
		if path == "" {
			path = "(root)"
		}
		b.WriteString(path)
		b.WriteString(": ")
		b.WriteString(issues[i].Message)
	}
	if n > max {
		fmt.Fprintf(&b, " …and %d more", n-max)
	}
	return b.String()
}

func malformed(err error) *ValidationError {
	return &ValidationError{Kind: MalformedInput, Message: err.Error()}
}

func violation(issues []Issue) *ValidationError {
	return &ValidationError{Kind: SchemaViolation, Issues: issues}
}

// decodeYAML unmarshals raw into out, classifying failures. A *yaml.TypeError
// means the document parsed but some value had the wrong shape; anything else
// is a syntax problem.
func decodeYAML(raw []byte, out any) *ValidationError {
	if err := yaml.Unmarshal(raw, out); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			issues := make([]Issue, 0, len(te.Errors))
			for _, msg := range te.Errors {
				issues = append(issues, Issue{Path: "(root)", Message: msg})
			}
			return violation(issues)
		}
		return malformed(err)
	}
	return nil
}

// ValidateDocument parses and validates a single YAML document of the given
// kind. It backs the dev validation endpoint; the loader and watcher use the
// typed Parse functions directly.
func ValidateDocument(raw []byte, kind DocKind) (any, error) {
	switch kind {
	case DocTheme:
		return ParseThemeMeta(raw)
	case DocCategory:
		return ParseCategoryMeta(raw)
	case DocSubcategory:
		return ParseSubcategoryMeta(raw)
	case DocQuestion:
		var q Question
		if verr := decodeYAML(raw, &q); verr != nil {
			return nil, verr
		}
		var issues []Issue
		checkQuestion(q, "", &issues)
		if len(issues) > 0 {
			return nil, violation(issues)
		}
		return q, nil
	case DocFlashcard:
		var f Flashcard
		if verr := decodeYAML(raw, &f); verr != nil {
			return nil, verr
		}
		var issues []Issue
		checkFlashcard(f, "", &issues)
		if len(issues) > 0 {
			return nil, violation(issues)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
}

// ParseThemeMeta validates a theme meta.yaml. Both fields are optional.
func ParseThemeMeta(raw []byte) (ThemeMeta, error) {
	var m ThemeMeta
	if verr := decodeYAML(raw, &m); verr != nil {
		return ThemeMeta{}, verr
	}
	return m, nil
}

// ParseCategoryMeta validates a category meta.yaml.
func ParseCategoryMeta(raw []byte) (CategoryMeta, error) {
	var m CategoryMeta
	if verr := decodeYAML(raw, &m); verr != nil {
		return CategoryMeta{}, verr
	}
	return m, nil
}

// ParseSubcategoryMeta validates a subcategory meta.yaml.
func ParseSubcategoryMeta(raw []byte) (SubcategoryMeta, error) {
	var m SubcategoryMeta
	if verr := decodeYAML(raw, &m); verr != nil {
		return SubcategoryMeta{}, verr
	}
	var issues []Issue
	if m.Title == "" {
		issues = append(issues, Issue{Path: "title", Message: "required"})
	}
	if m.EstimatedTimeMin != nil && *m.EstimatedTimeMin <= 0 {
		issues = append(issues, Issue{Path: "estimatedTimeMin", Message: "must be a positive integer"})
	}
	if len(issues) > 0 {
		return SubcategoryMeta{}, violation(issues)
	}
	return m, nil
}

// ParseQuestions validates a questions.yaml sequence.
func ParseQuestions(raw []byte) ([]Question, error) {
	var qs []Question
	if verr := decodeYAML(raw, &qs); verr != nil {
		return nil, verr
	}
	var issues []Issue
	for i, q := range qs {
		checkQuestion(q, fmt.Sprintf("[%d]", i), &issues)
	}
	if len(issues) > 0 {
		return nil, violation(issues)
	}
	if qs == nil {
		qs = []Question{}
	}
	return qs, nil
}

// ParseFlashcards validates a flashcards.yaml sequence.
func ParseFlashcards(raw []byte) ([]Flashcard, error) {
	var fcs []Flashcard
	if verr := decodeYAML(raw, &fcs); verr != nil {
		return nil, verr
	}
	var issues []Issue
	for i, f := range fcs {
		checkFlashcard(f, fmt.Sprintf("[%d]", i), &issues)
	}
	if len(issues) > 0 {
		return nil, violation(issues)
	}
	if fcs == nil {
		fcs = []Flashcard{}
	}
	return fcs, nil
}

func field(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func checkQuestion(q Question, prefix string, issues *[]Issue) {
	add := func(name, msg string) {
		*issues = append(*issues, Issue{Path: field(prefix, name), Message: msg})
	}

	if q.ID == "" {
		add("id", "required")
	}
	if q.Prompt == "" {
		add("prompt", "required")
	}
	switch q.Type {
	case "", TypeSingle, TypeMultiple, TypeOrder:
	default:
		add("type", fmt.Sprintf("must be one of single, multiple, order; got %q", q.Type))
	}
	if q.Options != nil && len(q.Options) < 2 {
		add("options", "must contain at least 2 entries")
	}
	for i, opt := range q.Options {
		if opt == "" {
			add(fmt.Sprintf("options[%d]", i), "must not be empty")
		}
	}
	for i, it := range q.Items {
		if it == "" {
			add(fmt.Sprintf("items[%d]", i), "must not be empty")
		}
	}
	if q.CorrectIndex != nil && *q.CorrectIndex < 0 {
		add("correctIndex", "must be non-negative")
	}
	for i, idx := range q.CorrectIndices {
		if idx < 0 {
			add(fmt.Sprintf("correctIndices[%d]", i), "must be non-negative")
		}
	}
	for i, idx := range q.CorrectOrder {
		if idx < 0 {
			add(fmt.Sprintf("correctOrder[%d]", i), "must be non-negative")
		}
	}

	// Per-type refinement. correctOrder may be shorter than items so that
	// a question can carry distractor items outside the ranked answer.
	ok := false
	switch q.Kind() {
	case TypeOrder:
		ok = len(q.Items) >= 2 &&
			len(q.CorrectOrder) >= 2 && len(q.CorrectOrder) <= len(q.Items)
	case TypeMultiple:
		ok = len(q.Options) > 0 && len(q.CorrectIndices) > 0
	case TypeSingle:
		ok = len(q.Options) > 0 &&
			(q.CorrectIndex != nil || len(q.CorrectIndices) == 1)
	}
	if !ok {
		add("", "Invalid question structure for the specified type")
	}
}

func checkFlashcard(f Flashcard, prefix string, issues *[]Issue) {
	add := func(name, msg string) {
		*issues = append(*issues, Issue{Path: field(prefix, name), Message: msg})
	}

	if f.ID == "" {
		add("id", "required")
	}
	checkBlock := func(name string, b *RichBlock) {
		if b != nil && b.Empty() {
			add(name, "Empty rich block")
		}
	}
	checkBlock("concept", f.Concept)
	checkBlock("command", f.Command)
	checkBlock("explanation", f.Explanation)
	for i := range f.Examples {
		checkBlock(fmt.Sprintf("examples[%d]", i), &f.Examples[i])
	}
	if f.Image != nil && *f.Image != "" {
		u, err := url.Parse(*f.Image)
		if err != nil || u.Scheme == "" || u.Host == "" {
			add("image", "must be a valid URL")
		}
	}
}
