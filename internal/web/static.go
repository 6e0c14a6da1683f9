package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rook-computer/flowerfield/internal/assets"
)

// StaticUIHandler serves the embedded UI, or dir when it names an existing
// directory.
func StaticUIHandler(dir string) http.Handler {
	var fileServer http.Handler
	if dir == "" {
		fileServer = http.FileServer(http.FS(assets.WebUI))
	} else if st, err := os.Stat(dir); err == nil && st.IsDir() {
		fileServer = http.FileServer(http.Dir(dir))
	} else {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid oddities.
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}
