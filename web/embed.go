// Package web embeds the single-page shell (dist/) and serves it for every
// route the API does not own.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// reserved prefixes never fall back to the shell, so a mistyped API call
// gets a 404 instead of HTML.
var reserved = []string{"api/", "ws/"}

// SPAHandler returns an http.Handler that serves the embedded shell. Paths
// that match a file are served as is; everything else gets index.html so the
// client-side router can resolve /estruturas/filas and friends.
func SPAHandler() http.Handler {
	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return newSPAHandler(subFS)
}

func newSPAHandler(root fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		for _, p := range reserved {
			if strings.HasPrefix(path, p) {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
		}
		if path == "" {
			path = "index.html"
		}

		if f, err := root.Open(path); err == nil {
			if closeErr := f.Close(); closeErr != nil {
				slog.Debug("web: failed to close embedded file", "path", path, "error", closeErr)
			}
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
