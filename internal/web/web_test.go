package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestEmbeddedIndex(t *testing.T) {
	h := Handler(Assets(""))
	rr := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	b, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(b), `id="goalForm"`) {
		t.Fatalf("index.html not served")
	}
}

func TestEmbeddedAssets(t *testing.T) {
	h := Handler(Assets(""))
	for _, p := range []string{"/app.js", "/style.css", "/manifest.json", "/service-worker.js"} {
		if rr := get(t, h, p); rr.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", p, rr.Code)
		}
	}
	if rr := get(t, h, "/service-worker.js"); rr.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("service worker must not be cached")
	}
	if rr := get(t, h, "/missing.txt"); rr.Code != http.StatusNotFound {
		t.Fatalf("GET /missing.txt = %d", rr.Code)
	}
}

func TestStaticDirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom</p>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}
	rr := get(t, Handler(Assets(dir)), "/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "custom") {
		t.Fatalf("override not served: %d %q", rr.Code, rr.Body.String())
	}
}

func TestClientLocalizesCyrillicGoals(t *testing.T) {
	rr := get(t, Handler(Assets("")), "/app.js")
	b, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(b), "Respond in Russian. Break down this goal") {
		t.Fatalf("app.js does not build the russian prompt")
	}
}
