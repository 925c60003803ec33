package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// verifyRequestSchema is the wire contract for grading requests, checked
// before decoding so malformed batches never reach the grading engine.
const verifyRequestSchema = `{
	"type": "object",
	"required": ["answers"],
	"properties": {
		"answers": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["questionId"],
				"properties": {
					"questionId": {"type": "string", "minLength": 1},
					"selectedIndex": {"type": "integer", "minimum": 0},
					"selectedIndices": {
						"type": "array",
						"items": {"type": "integer", "minimum": 0}
					},
					"selectedOrder": {
						"type": "array",
						"items": {"type": "integer", "minimum": 0}
					}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

var verifySchema = gojsonschema.NewStringLoader(verifyRequestSchema)

type verifyRequest struct {
	Answers []quiz.Answer `json:"answers"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	// Path resolution comes first: an unknown subcategory is a 404 no matter
	// what the payload looks like.
	sc, ok := s.findSubcategory(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "cannot read request body")
		return
	}

	result, err := gojsonschema.Validate(verifySchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "body must be valid JSON")
		return
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		writeErrorDetails(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY",
			"invalid verify payload", issues)
		return
	}

	var req verifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "body must be valid JSON")
		return
	}

	summary, err := quiz.Verify(sc, req.Answers)
	if err != nil {
		var be *quiz.BatchError
		if errors.As(err, &be) {
			writeError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", be.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":             contentID(r),
		"totalQuestions": summary.TotalQuestions,
		"answered":       summary.Answered,
		"correct":        summary.Correct,
		"results":        summary.Results,
	})
}
