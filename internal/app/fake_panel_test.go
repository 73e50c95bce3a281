package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"servctl/internal/auth"
	"servctl/internal/config"
	"servctl/internal/panel"

	"github.com/gorilla/websocket"
)

// fakePanel serves the panel API for one server, "survival".
type fakePanel struct {
	mu       sync.Mutex
	running  bool
	tunnel   panel.TunnelStatus
	posts    []string
	ports    []int
	commands []string
	logLines []string
	holdLogs bool // keep the log stream open after sending logLines

	srv *httptest.Server
}

var upgrader = websocket.Upgrader{}

func newFakePanel(t *testing.T) *fakePanel {
	t.Helper()
	p := &fakePanel{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /servers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []panel.Server{{ID: "survival", Name: "Survival", Version: "1.21"}})
	})
	mux.HandleFunc("GET /servers/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "survival" {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"detail": "Server not found"})
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, panel.ProcessStatus{Running: p.running})
	})
	mux.HandleFunc("POST /servers/{id}/command", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Command string `json:"command"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.commands = append(p.commands, body.Command)
		p.mu.Unlock()
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /servers/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.posts = append(p.posts, r.PathValue("id")+":"+r.PathValue("action"))
		p.mu.Unlock()
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /tunnel/status", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, p.tunnel)
	})
	mux.HandleFunc("POST /tunnel/{action}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PortData struct {
				Port int `json:"port"`
			} `json:"port_data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.posts = append(p.posts, "tunnel:"+r.PathValue("action"))
		p.ports = append(p.ports, body.PortData.Port)
		p.mu.Unlock()
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/ws/log/{id}", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		p.mu.Lock()
		lines, hold := append([]string(nil), p.logLines...), p.holdLogs
		p.mu.Unlock()
		for _, l := range lines {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(l))
		}
		if hold {
			// Block until the client goes away.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(20 * time.Millisecond)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (p *fakePanel) postLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

func (p *fakePanel) commandLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

// newTestServices wires services against p with short timings.
func newTestServices(t *testing.T, p *fakePanel) *Services {
	t.Helper()
	settings := config.GetDefaultConfig()
	settings.API.BaseURL = p.srv.URL
	settings.API.Timeout = 2 * time.Second
	settings.Polling.ProcessInterval = 20 * time.Millisecond
	settings.Polling.TunnelInterval = 20 * time.Millisecond
	settings.Actions.ProcessSettle = 10 * time.Millisecond
	settings.Actions.TunnelSettle = 10 * time.Millisecond
	settings.Actions.RestartDelay = 10 * time.Millisecond

	client := panel.NewClient(panel.Options{
		BaseURL:   p.srv.URL,
		StreamURL: "ws" + strings.TrimPrefix(p.srv.URL, "http"),
		Token:     "tok",
		Timeout:   settings.API.Timeout,
	})
	return &Services{
		Settings: settings,
		Tokens:   auth.NewStore(t.TempDir()),
		Client:   client,
		Remote:   NewRemote(client),
	}
}

// syncBuffer collects output written by one goroutine and polled by another.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
