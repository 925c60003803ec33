package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	themesDirName      = "themes"
	metaFileName       = "meta.yaml"
	questionsFileName  = "questions.yaml"
	flashcardsFileName = "flashcards.yaml"
)

// Load walks the content tree under <contentDir>/themes and assembles the
// full index. A missing themes directory yields an empty index: a deployment
// without content is valid. Any validation failure aborts the whole load so
// the process never starts serving a partial catalogue.
func Load(contentDir string) (*ContentIndex, error) {
	idx := &ContentIndex{Root: contentDir, Themes: make(map[string]*ThemeIndex)}

	themesRoot := filepath.Join(contentDir, themesDirName)
	entries, err := os.ReadDir(themesRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading themes root: %w", err)
	}

	// os.ReadDir sorts lexically, which keeps load order and logs stable.
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		theme, err := loadTheme(themesRoot, entry.Name())
		if err != nil {
			return nil, err
		}
		idx.Themes[theme.Slug] = theme
	}

	themes, cats, subs, questions, flashcards := idx.counts()
	slog.Info("content loaded",
		"dir", contentDir,
		"themes", themes,
		"categories", cats,
		"subcategories", subs,
		"questions", questions,
		"flashcards", flashcards,
	)
	return idx, nil
}

func loadTheme(themesRoot, slug string) (*ThemeIndex, error) {
	dir := filepath.Join(themesRoot, slug)

	// A theme directory without meta.yaml is a load error, unlike the levels
	// below: serving a theme with no descriptive metadata would leave the
	// catalogue inconsistent, and startup is the one moment to fail loudly.
	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("theme %s: reading %s: %w", slug, metaFileName, err)
	}
	meta, err := ParseThemeMeta(raw)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", slug, err)
	}

	theme := &ThemeIndex{Slug: slug, Meta: meta, Categories: make(map[string]*CategoryIndex)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", slug, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cat, err := loadCategory(dir, slug, entry.Name())
		if err != nil {
			return nil, err
		}
		if cat != nil {
			theme.Categories[cat.Slug] = cat
		}
	}
	return theme, nil
}

// loadCategory returns nil (no error) for directories without a meta.yaml:
// presence of the metadata file is what makes a directory a category.
func loadCategory(themeDir, theme, slug string) (*CategoryIndex, error) {
	dir := filepath.Join(themeDir, slug)

	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("category %s/%s: reading %s: %w", theme, slug, metaFileName, err)
	}
	meta, err := ParseCategoryMeta(raw)
	if err != nil {
		return nil, fmt.Errorf("category %s/%s: %w", theme, slug, err)
	}

	cat := &CategoryIndex{Slug: slug, Meta: meta, Subcategories: make(map[string]*SubcategoryIndex)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("category %s/%s: %w", theme, slug, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub, err := loadSubcategory(dir, theme, slug, entry.Name())
		if err != nil {
			return nil, err
		}
		if sub != nil {
			cat.Subcategories[sub.Slug] = sub
		}
	}
	return cat, nil
}

func loadSubcategory(catDir, theme, category, slug string) (*SubcategoryIndex, error) {
	dir := filepath.Join(catDir, slug)
	where := theme + "/" + category + "/" + slug

	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subcategory %s: reading %s: %w", where, metaFileName, err)
	}
	meta, err := ParseSubcategoryMeta(raw)
	if err != nil {
		return nil, fmt.Errorf("subcategory %s: %w", where, err)
	}

	questions, err := loadQuestionsFile(filepath.Join(dir, questionsFileName))
	if err != nil {
		return nil, fmt.Errorf("subcategory %s: %w", where, err)
	}
	flashcards, err := loadFlashcardsFile(filepath.Join(dir, flashcardsFileName))
	if err != nil {
		return nil, fmt.Errorf("subcategory %s: %w", where, err)
	}

	return &SubcategoryIndex{Slug: slug, Meta: meta, Questions: questions, Flashcards: flashcards}, nil
}

// loadQuestionsFile reads and validates questions.yaml. An absent file means
// an empty collection: a subcategory may be flashcards-only or still under
// authoring.
func loadQuestionsFile(path string) ([]Question, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Question{}, nil
	}
	if err != nil {
		return nil, err
	}
	qs, err := ParseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", questionsFileName, err)
	}
	return qs, nil
}

func loadFlashcardsFile(path string) ([]Flashcard, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Flashcard{}, nil
	}
	if err != nil {
		return nil, err
	}
	fcs, err := ParseFlashcards(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flashcardsFileName, err)
	}
	return fcs, nil
}

func (idx *ContentIndex) counts() (themes, cats, subs, questions, flashcards int) {
	themes = len(idx.Themes)
	for _, t := range idx.Themes {
		cats += len(t.Categories)
		for _, c := range t.Categories {
			subs += len(c.Subcategories)
			for _, s := range c.Subcategories {
				questions += len(s.Questions)
				flashcards += len(s.Flashcards)
			}
		}
	}
	return
}
