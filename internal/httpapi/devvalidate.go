package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/content"
)

// handleDevValidate checks a posted YAML document against one of the five
// content schemas. This is a content-authoring tool: the itemized issue list
// is the whole point of the response.
func (s *Server) handleDevValidate(w http.ResponseWriter, r *http.Request) {
	kind := content.DocKind(r.PathValue("kind"))
	switch kind {
	case content.DocTheme, content.DocCategory, content.DocSubcategory,
		content.DocQuestion, content.DocFlashcard:
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown document kind")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "cannot read request body")
		return
	}

	doc, err := content.ValidateDocument(raw, kind)
	if err != nil {
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			writeErrorDetails(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY",
				verr.Error(), verr.Issues)
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "kind": kind, "data": doc})
}
