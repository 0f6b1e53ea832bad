// Package dashboard serves warden analysis over HTTP: a small page for
// pasting scripts, a JSON API, and a websocket stream of analysis events
// for live tooling.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duskfall/warden/pkg/warden"
	"github.com/duskfall/warden/pkg/warden/catalog"
)

// maxScriptBytes bounds the request body accepted by the analyze endpoint.
const maxScriptBytes = 1 << 20

type Server struct {
	port         int
	analyzer     *warden.Analyzer
	server       *http.Server
	upgrader     websocket.Upgrader
	clients      map[*websocket.Conn]bool
	clientsMutex sync.RWMutex
	maxClients   int
	events       chan AnalysisEvent
	stop         chan struct{}
	stopOnce     sync.Once
}

// AnalysisEvent is broadcast to websocket clients after every analysis.
type AnalysisEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	Script         string    `json:"script"`
	Total          float64   `json:"total"`
	Unsafe         bool      `json:"unsafe"`
	UnsafeLoopLine int       `json:"unsafe_loop_line,omitempty"`
	Rejected       bool      `json:"rejected"`
	Error          string    `json:"error,omitempty"`
}

func NewServer(port int, analyzer *warden.Analyzer) *Server {
	return &Server{
		port:     port,
		analyzer: analyzer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return origin == fmt.Sprintf("http://localhost:%d", port) ||
					origin == fmt.Sprintf("http://127.0.0.1:%d", port)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:    make(map[*websocket.Conn]bool),
		maxClients: 100,
		events:     make(chan AnalysisEvent, 100),
		stop:       make(chan struct{}),
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/catalog", s.handleCatalog)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go s.broadcast()

	log.Printf("Starting warden dashboard on :%d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

type analyzeRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Player *struct {
		Level int                `json:"level"`
		Money float64            `json:"money"`
		Karma float64            `json:"karma"`
		Mults map[string]float64 `json:"mults"`
	} `json:"player"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxScriptBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": "reading request body",
		})
		return
	}

	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	if req.Name == "" {
		req.Name = "script"
	}

	var state *catalog.PlayerState
	if req.Player != nil {
		state = &catalog.PlayerState{
			Level: req.Player.Level,
			Money: req.Player.Money,
			Karma: req.Player.Karma,
			Mults: req.Player.Mults,
		}
	}

	report, err := s.analyzer.Analyze(req.Name, req.Source, state)
	if err != nil {
		s.sendEvent(AnalysisEvent{
			Timestamp: time.Now(),
			Script:    req.Name,
			Rejected:  true,
			Error:     err.Error(),
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "rejected", "message": err.Error(),
		})
		return
	}

	s.sendEvent(AnalysisEvent{
		Timestamp:      time.Now(),
		Script:         report.Script,
		Total:          report.Cost.Total,
		Unsafe:         report.Unsafe,
		UnsafeLoopLine: report.UnsafeLoopLine,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok", "data": report,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cat := s.analyzer.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data": map[string]any{
			"base_cost": cat.BaseCost,
			"entries":   cat.Describe(),
		},
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.clientsMutex.RLock()
	count := len(s.clients)
	s.clientsMutex.RUnlock()

	if count >= s.maxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	s.clientsMutex.Lock()
	s.clients[conn] = true
	s.clientsMutex.Unlock()

	// Reader loop exists only to notice the client going away.
	go func() {
		defer s.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMutex.Lock()
	delete(s.clients, conn)
	s.clientsMutex.Unlock()
	conn.Close()
}

// sendEvent queues an event for broadcast, dropping it if the channel is
// full so analysis never blocks on slow dashboard clients.
func (s *Server) sendEvent(event AnalysisEvent) {
	select {
	case s.events <- event:
	default:
	}
}

func (s *Server) broadcast() {
	for {
		select {
		case event := <-s.events:
			data, err := json.Marshal(map[string]any{
				"type": "analysis",
				"data": event,
			})
			if err != nil {
				continue
			}

			s.clientsMutex.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMutex.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					s.removeClient(conn)
				}
			}
		case <-s.stop:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>Warden</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; }
        .card { background: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        textarea { width: 100%; height: 280px; font-family: monospace; padding: 8px; box-sizing: border-box; }
        button { background: #3498db; color: white; border: none; padding: 8px 16px; border-radius: 3px; cursor: pointer; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 6px; border-bottom: 1px solid #ecf0f1; }
        .total { font-size: 1.5em; font-weight: bold; color: #3498db; }
        .unsafe { color: #e74c3c; font-weight: bold; }
        .event { padding: 8px; margin: 4px 0; border-left: 4px solid #3498db; background: #ecf0f1; font-size: 0.9em; }
        .event.unsafe { border-left-color: #e74c3c; }
        .timestamp { font-size: 0.8em; color: #7f8c8d; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Warden</h1>
        <p>Static cost and loop-safety analysis for gridscript</p>
    </div>

    <div class="grid">
        <div class="card">
            <h3>Script</h3>
            <input type="text" id="script-name" placeholder="script.gs" style="width: 100%; margin-bottom: 8px; padding: 8px; box-sizing: border-box;" />
            <textarea id="script-source" placeholder="while (true) {
    await hack('target');
}"></textarea>
            <div style="margin-top: 10px;">
                <button onclick="analyze()">Analyze</button>
            </div>
        </div>

        <div class="card">
            <h3>Report</h3>
            <div id="report">Paste a script and click Analyze.</div>
        </div>

        <div class="card">
            <h3>Recent Analyses</h3>
            <div id="events"></div>
        </div>

        <div class="card">
            <h3>Catalog</h3>
            <div id="catalog">Loading...</div>
        </div>
    </div>

    <script>
        const ws = new WebSocket('ws://' + location.host + '/ws');
        ws.onmessage = function(msg) {
            const payload = JSON.parse(msg.data);
            if (payload.type !== 'analysis') return;
            const e = payload.data;
            const div = document.createElement('div');
            div.className = 'event' + (e.unsafe || e.rejected ? ' unsafe' : '');
            let text = '<strong>' + e.script + '</strong> ';
            if (e.rejected) {
                text += 'rejected: ' + e.error;
            } else if (e.unsafe) {
                text += 'unsafe loop at line ' + e.unsafe_loop_line;
            } else {
                text += 'cost ' + e.total.toFixed(2);
            }
            div.innerHTML = text + '<div class="timestamp">' + new Date(e.timestamp).toLocaleString() + '</div>';
            const list = document.getElementById('events');
            list.insertBefore(div, list.firstChild);
            while (list.children.length > 20) list.removeChild(list.lastChild);
        };

        function analyze() {
            fetch('/api/analyze', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({
                    name: document.getElementById('script-name').value || 'script.gs',
                    source: document.getElementById('script-source').value
                })
            })
            .then(r => r.json())
            .then(data => {
                const target = document.getElementById('report');
                if (data.status !== 'ok') {
                    target.innerHTML = '<span class="unsafe">' + data.message + '</span>';
                    return;
                }
                const report = data.data;
                let html = '<div class="total">' + report.cost.total.toFixed(2) + '</div>';
                if (report.unsafe) {
                    html += '<p class="unsafe">Unsafe loop at line ' + report.unsafe_loop_line + '</p>';
                }
                html += '<table><tr><th>Name</th><th>Kind</th><th>Cost</th></tr>';
                report.cost.entries.forEach(e => {
                    html += '<tr><td>' + e.name + '</td><td>' + e.kind + '</td><td>' + e.cost.toFixed(2) + '</td></tr>';
                });
                html += '</table>';
                target.innerHTML = html;
            })
            .catch(err => {
                document.getElementById('report').textContent = 'Error: ' + err;
            });
        }

        fetch('/api/catalog')
        .then(r => r.json())
        .then(data => {
            if (data.status !== 'ok') return;
            let html = '<table><tr><th>Name</th><th>Cost</th></tr>';
            html += '<tr><td>base</td><td>' + data.data.base_cost.toFixed(2) + '</td></tr>';
            data.data.entries.forEach(e => {
                html += '<tr><td>' + e.name + '</td><td>' + (e.dynamic ? 'dynamic' : e.cost.toFixed(2)) + '</td></tr>';
            });
            html += '</table>';
            document.getElementById('catalog').innerHTML = html;
        });
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, html)
}
