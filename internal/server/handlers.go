package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	serrors "github.com/liveserve/liveserve/internal/errors"
	"github.com/liveserve/liveserve/internal/resolver"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(liveClientScript))
}

// handleFile resolves the request tail inside the serving root and
// serves the target. HTML documents get the live-client injection and
// cache-disabling headers; everything else is served statically with
// normal caching.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	target, err := resolver.Resolve(s.baseDir, r.URL.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !isHTML(target) {
		http.ServeFile(w, r, target)
		return
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		s.respondError(w, r, serrors.Internal("reading html document", err))
		return
	}

	injected, err := injectLiveClient(string(raw), s.diffMode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(injected))
}

// respondError maps taxonomy errors onto statuses. Invalid paths and
// missing files both answer 404 with identical bodies.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := serrors.StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "reason", err.Error())
	}
	http.Error(w, http.StatusText(status), status)
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}
