package content

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ScopeKind identifies which index node a filesystem event affects.
type ScopeKind string

const (
	ScopeUnknown         ScopeKind = "unknown"
	ScopeThemeMeta       ScopeKind = "themeMeta"
	ScopeCategoryMeta    ScopeKind = "categoryMeta"
	ScopeSubcategoryMeta ScopeKind = "subcategoryMeta"
	ScopeQuestions       ScopeKind = "questions"
	ScopeFlashcards      ScopeKind = "flashcards"
)

// Scope is the classification of a changed path into the node it belongs to.
type Scope struct {
	Kind        ScopeKind `json:"kind"`
	Theme       string    `json:"theme,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
}

// pathToScope classifies a path relative to the content root. Expected shapes:
//
//	themes/<theme>/meta.yaml
//	themes/<theme>/<category>/meta.yaml
//	themes/<theme>/<category>/<sub>/meta.yaml
//	themes/<theme>/<category>/<sub>/questions.yaml
//	themes/<theme>/<category>/<sub>/flashcards.yaml
//
// Anything else is ScopeUnknown. Paths are slash- and Unicode-normalized so
// events from macOS (NFD filenames) classify the same as the loader's view.
func pathToScope(root, path string) Scope {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Scope{Kind: ScopeUnknown}
	}
	rel = norm.NFC.String(filepath.ToSlash(rel))
	parts := strings.Split(rel, "/")
	if parts[0] != themesDirName {
		return Scope{Kind: ScopeUnknown}
	}

	switch {
	case len(parts) == 3 && parts[2] == metaFileName:
		return Scope{Kind: ScopeThemeMeta, Theme: parts[1]}
	case len(parts) == 4 && parts[3] == metaFileName:
		return Scope{Kind: ScopeCategoryMeta, Theme: parts[1], Category: parts[2]}
	case len(parts) == 5 && parts[4] == metaFileName:
		return Scope{Kind: ScopeSubcategoryMeta, Theme: parts[1], Category: parts[2], Subcategory: parts[3]}
	case len(parts) == 5 && parts[4] == questionsFileName:
		return Scope{Kind: ScopeQuestions, Theme: parts[1], Category: parts[2], Subcategory: parts[3]}
	case len(parts) == 5 && parts[4] == flashcardsFileName:
		return Scope{Kind: ScopeFlashcards, Theme: parts[1], Category: parts[2], Subcategory: parts[3]}
	}
	return Scope{Kind: ScopeUnknown}
}
