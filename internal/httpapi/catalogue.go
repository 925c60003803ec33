package httpapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/quizdeck/quizdeck/internal/content"
)

type themeSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type subcategorySummary struct {
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	EstimatedTimeMin *int   `json:"estimatedTimeMin,omitempty"`
	Counts           struct {
		Questions  int `json:"questions"`
		Flashcards int `json:"flashcards"`
	} `json:"counts"`
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	idx := s.store.Index()
	themes := make([]themeSummary, 0, len(idx.Themes))
	for _, t := range idx.Themes {
		themes = append(themes, themeSummary{Slug: t.Slug, Title: t.Meta.Title, Description: t.Meta.Description})
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].Slug < themes[j].Slug })
	writeJSON(w, http.StatusOK, map[string]any{"themes": themes})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.PathValue("theme")
	t, ok := s.store.Theme(theme)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown theme '%s'", theme))
		return
	}

	categories := make([]themeSummary, 0, len(t.Categories))
	for _, c := range t.Categories {
		categories = append(categories, themeSummary{Slug: c.Slug, Title: c.Meta.Title, Description: c.Meta.Description})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Slug < categories[j].Slug })

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":      themeSummary{Slug: t.Slug, Title: t.Meta.Title, Description: t.Meta.Description},
		"categories": categories,
	})
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	theme, category := r.PathValue("theme"), r.PathValue("category")
	t, ok := s.store.Theme(theme)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown theme '%s'", theme))
		return
	}
	c, ok := t.Categories[category]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("unknown category '%s' for theme '%s'", category, theme))
		return
	}

	subs := make([]subcategorySummary, 0, len(c.Subcategories))
	for _, sc := range c.Subcategories {
		sum := subcategorySummary{
			Slug:             sc.Slug,
			Title:            sc.Meta.Title,
			EstimatedTimeMin: sc.Meta.EstimatedTimeMin,
		}
		sum.Counts.Questions = len(sc.Questions)
		sum.Counts.Flashcards = len(sc.Flashcards)
		subs = append(subs, sum)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Slug < subs[j].Slug })

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":         themeSummary{Slug: t.Slug, Title: t.Meta.Title},
		"category":      themeSummary{Slug: c.Slug, Title: c.Meta.Title},
		"subcategories": subs,
	})
}

// findSubcategory resolves a delivery path, writing the 404 itself when a
// level is missing.
func (s *Server) findSubcategory(w http.ResponseWriter, r *http.Request) (*content.SubcategoryIndex, bool) {
	theme := r.PathValue("theme")
	category := r.PathValue("category")
	sub := r.PathValue("subcategory")

	t, ok := s.store.Theme(theme)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown theme '%s'", theme))
		return nil, false
	}
	c, ok := t.Categories[category]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("unknown category '%s' for theme '%s'", category, theme))
		return nil, false
	}
	sc, ok := c.Subcategories[sub]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("unknown subcategory '%s' for %s/%s", sub, theme, category))
		return nil, false
	}
	return sc, true
}
