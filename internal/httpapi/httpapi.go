// Package httpapi exposes the content catalogue, quiz delivery and grading,
// progress persistence, and the content-authoring surfaces over HTTP.
package httpapi

import (
	"net/http"

	"github.com/quizdeck/quizdeck/internal/content"
	"github.com/quizdeck/quizdeck/internal/progress"
)

// Server bundles the handlers' dependencies. A nil progress store means
// persistence is disabled; the progress routes answer 503 while everything
// else keeps working.
type Server struct {
	store      *content.Store
	progress   progress.Store
	contentDir string
	hub        *Hub
}

// New creates a Server over the live content store.
func New(store *content.Store, progressStore progress.Store, contentDir string) *Server {
	return &Server{
		store:      store,
		progress:   progressStore,
		contentDir: contentDir,
		hub:        newHub(),
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /themes", s.handleListThemes)
	mux.HandleFunc("GET /themes/{theme}", s.handleGetTheme)
	mux.HandleFunc("GET /themes/{theme}/{category}", s.handleGetCategory)
	mux.HandleFunc("GET /themes/{theme}/{category}/{subcategory}/questions", s.handleQuestions)
	mux.HandleFunc("GET /themes/{theme}/{category}/{subcategory}/flashcards", s.handleFlashcards)
	mux.HandleFunc("POST /themes/{theme}/{category}/{subcategory}/verify", s.handleVerify)

	mux.HandleFunc("GET /progress/{uuid}", s.handleGetProgress)
	mux.HandleFunc("POST /progress/{uuid}", s.handleUpsertProgress)
	mux.HandleFunc("DELETE /progress/{uuid}", s.handleResetProgress)
	mux.HandleFunc("POST /progress/{uuid}/attempt", s.handleRecordAttempt)
	mux.HandleFunc("GET /progress/{uuid}/export", s.handleExportProgress)

	mux.HandleFunc("GET /images/{theme}/{category}/{subcategory}/{filename}", s.handleImage)

	mux.HandleFunc("POST /dev/validate/{kind}", s.handleDevValidate)

	mux.HandleFunc("GET /ws/content", s.handleContentEvents)

	return mux
}

// BroadcastEvent pushes a reconciliation event to connected authoring
// clients. Wired to the content watcher's OnEvent callback.
func (s *Server) BroadcastEvent(ev content.Event) {
	s.hub.broadcast(ev)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
