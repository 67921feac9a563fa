// Package web serves the browser client.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

//go:embed static
var embedded embed.FS

// Assets returns the static site. A non-empty dir replaces the embedded files
// with the contents of that directory.
func Assets(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler serves files from assets. The root path returns index.html.
func Handler(assets fs.FS) http.Handler {
	files := http.FileServer(http.FS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/service-worker.js" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}
