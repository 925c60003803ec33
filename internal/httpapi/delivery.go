package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/quizdeck/quizdeck/internal/content"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

// publicQuestion is the delivery view of a question: the correct-answer
// fields never leave the server.
type publicQuestion struct {
	ID          string               `json:"id"`
	Type        content.QuestionType `json:"type,omitempty"`
	Prompt      string               `json:"prompt"`
	Options     []string             `json:"options,omitempty"`
	Items       []string             `json:"items,omitempty"`
	Images      []string             `json:"images,omitempty"`
	Explanation string               `json:"explanation,omitempty"`
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.findSubcategory(w, r)
	if !ok {
		return
	}

	doShuffle := parseBoolParam(r.URL.Query().Get("shuffle"))
	seed := r.URL.Query().Get("seed")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}

	items := make([]publicQuestion, 0, len(sc.Questions))
	for _, q := range sc.Questions {
		items = append(items, publicQuestion{
			ID:          q.ID,
			Type:        q.Type,
			Prompt:      q.Prompt,
			Options:     q.Options,
			Items:       q.Items,
			Images:      q.Images,
			Explanation: q.Explanation,
		})
	}

	total := len(items)
	id := contentID(r)
	if doShuffle {
		// A path-derived default seed keeps repeated fetches of the same
		// subcategory reproducible for clients that do not pick one.
		effective := seed
		if effective == "" {
			effective = strings.ReplaceAll(id, "/", ":")
		}
		items = quiz.ShuffleSeeded(items, effective)
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	var seedOut any
	if seed != "" {
		seedOut = seed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"shuffled": doShuffle,
		"seed":     seedOut,
		"total":    total,
		"returned": len(items),
		"items":    items,
	})
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.findSubcategory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    contentID(r),
		"total": len(sc.Flashcards),
		"items": sc.Flashcards,
	})
}

func contentID(r *http.Request) string {
	return fmt.Sprintf("%s/%s/%s",
		r.PathValue("theme"), r.PathValue("category"), r.PathValue("subcategory"))
}

func parseBoolParam(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
