package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duskfall/warden/pkg/warden"
	"github.com/duskfall/warden/pkg/warden/catalog"
	"github.com/duskfall/warden/pkg/warden/dashboard"
)

func TestIntegrationSuite(t *testing.T) {
	t.Run("AnalysisPipeline", testAnalysisPipeline)
	t.Run("CatalogFromYAML", testCatalogFromYAML)
	t.Run("DashboardAPI", testDashboardAPI)
	t.Run("WebSocketEvents", testWebSocketEvents)
	t.Run("ConcurrentAnalyses", testConcurrentAnalyses)
}

func testAnalysisPipeline(t *testing.T) {
	a := warden.New()

	// A realistic worm controller: awaiting loop, namespace hits, a
	// browser global, and duplicate references.
	source := `let target = "n00dles";
let threads = 4;

while (true) {
	await weaken(target);
	await grow(target);
	await hack(target);
	if (stock.price(target) > 1000000) {
		stock.sell(target);
	}
	window.alert("cycle done");
}`

	report, err := a.Analyze("controller.gs", source, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.Unsafe {
		t.Error("awaiting controller flagged unsafe")
	}

	names := make(map[string]float64)
	for _, e := range report.Cost.Entries {
		names[e.Name] = e.Cost
	}

	for _, want := range []string{"base", "weaken", "grow", "hack", "stock.price", "stock.sell", "window"} {
		if _, ok := names[want]; !ok {
			t.Errorf("expected entry %s in report, got %v", want, names)
		}
	}

	var sum float64
	for _, c := range names {
		sum += c
	}
	if diff := sum - report.Cost.Total; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total %v does not match entry sum %v", report.Cost.Total, sum)
	}
}

func testCatalogFromYAML(t *testing.T) {
	cat, err := catalog.Parse([]byte(`
base_cost: 1.0
special:
  hacknet: 3.0
namespaces:
  - name: fleet
    entries:
      deploy:
        expr: "5.0 / (1.0 + float(player.Level) * 0.01)"
default:
  hack: 0.2
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	a := warden.New(warden.WithCatalog(cat))

	rookie, err := a.Analyze("d.gs", `deploy("swarm");`, &catalog.PlayerState{Level: 1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	veteran, err := a.Analyze("d.gs", `deploy("swarm");`, &catalog.PlayerState{Level: 100})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if veteran.Cost.Total >= rookie.Cost.Total {
		t.Errorf("expected level to lower deploy cost: %v >= %v",
			veteran.Cost.Total, rookie.Cost.Total)
	}
}

func startDashboard(t *testing.T, port int) *dashboard.Server {
	t.Helper()
	server := dashboard.NewServer(port, warden.New())
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			t.Logf("dashboard stopped: %v", err)
		}
	}()
	t.Cleanup(func() { server.Stop() })

	base := fmt.Sprintf("http://localhost:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(base + "/api/catalog")
		if err == nil {
			resp.Body.Close()
			return server
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("dashboard did not come up")
	return nil
}

func testDashboardAPI(t *testing.T) {
	const port = 19090
	startDashboard(t, port)
	base := fmt.Sprintf("http://localhost:%d", port)

	body := bytes.NewBufferString(`{"name": "w.gs", "source": "while (true) { x = 1; }"}`)
	resp, err := http.Post(base+"/api/analyze", "application/json", body)
	if err != nil {
		t.Fatalf("analyze request failed: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		Status string        `json:"status"`
		Data   warden.Report `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if result.Status != "ok" {
		t.Fatalf("expected ok, got %s", result.Status)
	}
	if !result.Data.Unsafe || result.Data.UnsafeLoopLine != 1 {
		t.Errorf("expected unsafe loop on line 1, got %+v", result.Data)
	}
}

func testWebSocketEvents(t *testing.T) {
	const port = 19091
	startDashboard(t, port)

	conn, _, err := websocket.DefaultDialer.Dial(
		fmt.Sprintf("ws://localhost:%d/ws", port), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	// Trigger an analysis and expect its event on the stream.
	body := bytes.NewBufferString(`{"name": "e.gs", "source": "await hack(\"a\");"}`)
	resp, err := http.Post(fmt.Sprintf("http://localhost:%d/api/analyze", port),
		"application/json", body)
	if err != nil {
		t.Fatalf("analyze request failed: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading websocket event: %v", err)
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Script string  `json:"script"`
			Total  float64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if event.Type != "analysis" || event.Data.Script != "e.gs" {
		t.Errorf("unexpected event: %s", msg)
	}
	if event.Data.Total <= 0 {
		t.Errorf("expected positive total in event, got %v", event.Data.Total)
	}
}

func testConcurrentAnalyses(t *testing.T) {
	a := warden.New()

	sources := []string{
		`await hack("a");`,
		`while (true) {}`,
		`hacknet.purchaseNode();`,
		`let x = 1; while (x < 10) { x = x + 1; }`,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				source := sources[(n+j)%len(sources)]
				if _, err := a.Analyze("c.gs", source, nil); err != nil {
					t.Errorf("Analyze failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
