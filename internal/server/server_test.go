package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gaspardpetit/tasksplit/internal/config"
	"github.com/gaspardpetit/tasksplit/internal/gemini"
	"github.com/gaspardpetit/tasksplit/internal/serverstate"
)

func testConfig() config.ServerConfig {
	cfg := config.ServerConfig{MetricsAddr: ":8080"}
	cfg.SetDefaults()
	return cfg
}

func newTestServer(t *testing.T, cfg config.ServerConfig, upstreamURL string) *httptest.Server {
	t.Helper()
	gen := gemini.New(gemini.Options{BaseURL: upstreamURL, APIKey: "key", Model: "gemini-test", Timeout: time.Second})
	ts := httptest.NewServer(New(cfg, gen, NewRegistry(), "test"))
	t.Cleanup(ts.Close)
	return ts
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, testConfig(), "http://127.0.0.1:1")
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected text/html content type, got %s", ct)
	}
	if !strings.Contains(body, "goalForm") {
		t.Fatalf("index page not served")
	}

	resp, err = http.Get(ts.URL + "/app.js")
	if err != nil {
		t.Fatalf("GET /app.js: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for app.js, got %d", resp.StatusCode)
	}
}

func TestProxyEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[\"One\",\"Two\"]"}]}}]}`))
	}))
	defer upstream.Close()
	ts := newTestServer(t, testConfig(), upstream.URL)

	resp, err := http.Post(ts.URL+"/api/gemini", "application/json", strings.NewReader(`{"goal":"ship it"}`))
	if err != nil {
		t.Fatalf("POST /api/gemini: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Text  string   `json:"text"`
		Tasks []string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != `["One","Two"]` || len(out.Tasks) != 2 {
		t.Fatalf("unexpected response %+v", out)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	metricsBody := readBody(t, resp)
	if !strings.Contains(metricsBody, `tasksplit_proxy_requests_total{outcome="success"}`) {
		t.Fatalf("proxy metric missing from /metrics")
	}
}

func TestProxyRejectsGet(t *testing.T) {
	ts := newTestServer(t, testConfig(), "http://127.0.0.1:1")
	resp, err := http.Get(ts.URL + "/api/gemini")
	if err != nil {
		t.Fatalf("GET /api/gemini: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointSeparatePort(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = ":9090"
	ts := newTestServer(t, cfg, "http://127.0.0.1:1")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	ms := httptest.NewServer(MetricsHandler(NewRegistry()))
	defer ms.Close()
	resp, err = http.Get(ms.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET separate /metrics: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "go_goroutines") {
		t.Fatalf("runtime metrics missing")
	}
}

func TestHealthz(t *testing.T) {
	serverstate.UseStore(serverstate.NewMemoryStore())
	defer serverstate.UseStore(serverstate.NewMemoryStore())

	ts := newTestServer(t, testConfig(), "http://127.0.0.1:1")
	get := func() int {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		_ = readBody(t, resp)
		return resp.StatusCode
	}
	if code := get(); code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: expected 503, got %d", code)
	}
	serverstate.SetState(serverstate.StatusReady)
	if code := get(); code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", code)
	}
	serverstate.StartDrain()
	if code := get(); code != http.StatusServiceUnavailable {
		t.Fatalf("draining: expected 503, got %d", code)
	}
}

func TestCORSAllowedOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://example.com"}
	ts := newTestServer(t, cfg, "http://127.0.0.1:1")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = readBody(t, resp)
	if ao := resp.Header.Get("Access-Control-Allow-Origin"); ao != "https://example.com" {
		t.Fatalf("expected allowed origin header, got %q", ao)
	}

	req2, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req2.Header.Set("Origin", "https://evil.com")
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = readBody(t, resp2)
	if ao := resp2.Header.Get("Access-Control-Allow-Origin"); ao != "" {
		t.Fatalf("expected no allowed origin header, got %q", ao)
	}
}

func TestOpenAPIRoute(t *testing.T) {
	ts := newTestServer(t, testConfig(), "http://127.0.0.1:1")
	resp, err := http.Get(ts.URL + "/api/openapi.json")
	if err != nil {
		t.Fatalf("GET /api/openapi.json: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "/api/gemini") {
		t.Fatalf("unexpected openapi response %d", resp.StatusCode)
	}
}
