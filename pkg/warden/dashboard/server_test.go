package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duskfall/warden/pkg/warden"
)

func newTestServer() *Server {
	return NewServer(9090, warden.New())
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("ValidScript", testAnalyzeValidScript)
	t.Run("UnsafeScript", testAnalyzeUnsafeScript)
	t.Run("RejectedScript", testAnalyzeRejectedScript)
	t.Run("WithPlayerState", testAnalyzeWithPlayerState)
	t.Run("BadRequests", testAnalyzeBadRequests)
}

func postAnalyze(t *testing.T, s *Server, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleAnalyze(w, req)

	if w.Code != http.StatusOK && w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return resp
}

func testAnalyzeValidScript(t *testing.T) {
	s := newTestServer()

	resp := postAnalyze(t, s, `{"name": "w.gs", "source": "await hack(\"a\");"}`)
	if resp["status"] != "ok" {
		t.Fatalf("expected ok, got %v", resp)
	}

	data := resp["data"].(map[string]any)
	if data["script"] != "w.gs" {
		t.Errorf("expected script w.gs, got %v", data["script"])
	}
	cost := data["cost"].(map[string]any)
	if cost["total"].(float64) <= 0 {
		t.Errorf("expected positive total, got %v", cost["total"])
	}
}

func testAnalyzeUnsafeScript(t *testing.T) {
	s := newTestServer()

	resp := postAnalyze(t, s, `{"name": "spin.gs", "source": "while (true) {}"}`)
	if resp["status"] != "ok" {
		t.Fatalf("expected ok, got %v", resp)
	}

	data := resp["data"].(map[string]any)
	if data["unsafe"] != true {
		t.Error("expected unsafe report")
	}
	if data["unsafe_loop_line"].(float64) != 1 {
		t.Errorf("expected loop line 1, got %v", data["unsafe_loop_line"])
	}
}

func testAnalyzeRejectedScript(t *testing.T) {
	s := newTestServer()

	resp := postAnalyze(t, s, `{"name": "bad.gs", "source": "while true {"}`)
	if resp["status"] != "rejected" {
		t.Fatalf("expected rejected, got %v", resp)
	}
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "bad.gs") {
		t.Errorf("rejection should name the script, got %q", msg)
	}
}

func testAnalyzeWithPlayerState(t *testing.T) {
	s := newTestServer()

	// gang.recruit is dynamic over karma; two different snapshots must
	// price differently.
	low := postAnalyze(t, s, `{"source": "recruit();", "player": {"karma": 0}}`)
	high := postAnalyze(t, s, `{"source": "recruit();", "player": {"karma": 40}}`)

	lowTotal := low["data"].(map[string]any)["cost"].(map[string]any)["total"].(float64)
	highTotal := high["data"].(map[string]any)["cost"].(map[string]any)["total"].(float64)
	if highTotal <= lowTotal {
		t.Errorf("expected karma to raise cost: %v <= %v", highTotal, lowTotal)
	}
}

func testAnalyzeBadRequests(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	w := httptest.NewRecorder()
	s.handleAnalyze(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("not json"))
	w = httptest.NewRecorder()
	s.handleAnalyze(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", w.Code)
	}
}

func TestHandleCatalog(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	w := httptest.NewRecorder()
	s.handleCatalog(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	data := resp["data"].(map[string]any)
	if data["base_cost"].(float64) != 1.6 {
		t.Errorf("expected base cost 1.6, got %v", data["base_cost"])
	}
	if len(data["entries"].([]any)) == 0 {
		t.Error("expected catalog entries")
	}
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.handleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("expected text/html, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "Warden") {
		t.Error("index page missing title")
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	s.handleIndex(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestEventQueueNeverBlocks(t *testing.T) {
	s := newTestServer()

	// No broadcast goroutine is draining the channel; filling it past
	// capacity must drop events instead of blocking the caller.
	for i := 0; i < 500; i++ {
		s.sendEvent(AnalysisEvent{Script: "x.gs"})
	}
}

func TestOriginCheck(t *testing.T) {
	s := newTestServer()
	check := s.upgrader.CheckOrigin

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:9090", true},
		{"http://127.0.0.1:9090", true},
		{"http://evil.example.com", false},
		{"http://localhost:8080", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := check(req); got != tt.want {
			t.Errorf("origin %q: expected %v, got %v", tt.origin, tt.want, got)
		}
	}
}
