package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// handleImage serves question illustrations straight from the subcategory
// directory the content author dropped them into.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	parts := []string{
		r.PathValue("theme"),
		r.PathValue("category"),
		r.PathValue("subcategory"),
		r.PathValue("filename"),
	}
	for _, p := range parts {
		if strings.Contains(p, "..") || strings.ContainsAny(p, `/\`) {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid path")
			return
		}
	}

	path := filepath.Join(s.contentDir, "themes", parts[0], parts[1], parts[2], parts[3])
	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "image not found")
		return
	}

	contentType := imageContentTypes[strings.ToLower(filepath.Ext(parts[3]))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
