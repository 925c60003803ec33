package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/progress"
)

func (s *Server) requireProgress(w http.ResponseWriter) bool {
	if s.progress == nil {
		writeError(w, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED",
			"progress persistence is disabled (QUIZ_DATABASE_URL not set)")
		return false
	}
	return true
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	if !s.requireProgress(w) {
		return
	}
	uuid := r.PathValue("uuid")
	report, err := s.progress.Aggregates(r.Context(), uuid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uuid":          uuid,
		"byTheme":       report.ByTheme,
		"byCategory":    report.ByCategory,
		"bySubcategory": report.BySubcategory,
		"totals":        report.Totals,
	})
}

type progressUpsertRequest struct {
	Theme          string `json:"theme"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	TotalQuestions int    `json:"totalQuestions"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
	Score          *int   `json:"score,omitempty"`
}

func (p *progressUpsertRequest) validate(needScore bool) error {
	if p.Theme == "" || p.Category == "" || p.Subcategory == "" {
		return fmt.Errorf("theme, category and subcategory are required")
	}
	if p.TotalQuestions < 0 || p.Answered < 0 || p.Correct < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	if p.Answered > p.TotalQuestions {
		return fmt.Errorf("answered > totalQuestions")
	}
	if p.Correct > p.Answered {
		return fmt.Errorf("correct > answered")
	}
	if needScore {
		if p.Score == nil {
			return fmt.Errorf("score is required")
		}
		if *p.Score < 0 || *p.Score > 100 {
			return fmt.Errorf("score must be between 0 and 100")
		}
	}
	return nil
}

func (s *Server) handleUpsertProgress(w http.ResponseWriter, r *http.Request) {
	if !s.requireProgress(w) {
		return
	}
	var req progressUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "body must be valid JSON")
		return
	}
	if err := req.validate(false); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", err.Error())
		return
	}

	err := s.progress.Upsert(r.Context(), progress.Record{
		UUID:           r.PathValue("uuid"),
		Theme:          req.Theme,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		TotalQuestions: req.TotalQuestions,
		Answered:       req.Answered,
		Correct:        req.Correct,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if !s.requireProgress(w) {
		return
	}
	err := s.progress.Reset(r.Context(), r.PathValue("uuid"), r.URL.Query().Get("theme"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	if !s.requireProgress(w) {
		return
	}
	var req progressUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "body must be valid JSON")
		return
	}
	if err := req.validate(true); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", err.Error())
		return
	}

	err := s.progress.RecordAttempt(r.Context(), progress.Attempt{
		UUID:           r.PathValue("uuid"),
		Theme:          req.Theme,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		TotalQuestions: req.TotalQuestions,
		Answered:       req.Answered,
		Correct:        req.Correct,
		Score:          *req.Score,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleExportProgress(w http.ResponseWriter, r *http.Request) {
	if !s.requireProgress(w) {
		return
	}
	uuid := r.PathValue("uuid")
	report, err := s.progress.Aggregates(r.Context(), uuid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := progress.WriteWorkbook(&buf, uuid, report); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="progress-%s.xlsx"`, uuid))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
