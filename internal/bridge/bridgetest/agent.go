// Package bridgetest provides an in-process fake update agent for tests.
package bridgetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pushchain/push-ota/internal/update"
)

// Failure is the error an endpoint answers with.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Request records one call the agent received.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// Agent is a scriptable fake of the update agent's HTTP API.
type Agent struct {
	Server *httptest.Server

	mu          sync.Mutex
	running     update.CurrentlyRunning
	checkResult update.CheckResult
	failures    map[string]*Failure
	requests    []Request
	conns       map[*websocket.Conn]struct{}
	upgrader    websocket.Upgrader
}

// NewAgent starts a fake agent. Callers must Close it.
func NewAgent(running update.CurrentlyRunning) *Agent {
	a := &Agent{
		running:  running,
		failures: map[string]*Failure{},
		conns:    map[*websocket.Conn]struct{}{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/constants", a.record(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		running := a.running
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, running)
	}))
	mux.HandleFunc("POST /v1/check", a.record(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		res := a.checkResult
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, res)
	}))
	mux.HandleFunc("POST /v1/fetch", a.record(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /v1/reload", a.record(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	mux.HandleFunc("GET /v1/events", a.record(a.handleEvents))

	a.Server = httptest.NewServer(mux)
	return a
}

// URL returns the agent's base URL.
func (a *Agent) URL() string { return a.Server.URL }

// Close drops all event subscribers and stops the server.
func (a *Agent) Close() {
	a.mu.Lock()
	for c := range a.conns {
		_ = c.Close()
	}
	a.mu.Unlock()
	a.Server.Close()
}

// SetCheckResult sets what the next checks return.
func (a *Agent) SetCheckResult(res update.CheckResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkResult = res
}

// Fail makes the endpoint at path answer with f. A nil f clears it.
func (a *Agent) Fail(path string, f *Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f == nil {
		delete(a.failures, path)
		return
	}
	a.failures[path] = f
}

// Requests returns the calls received so far.
func (a *Agent) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.requests))
	copy(out, a.requests)
	return out
}

// Count returns how many times path was called.
func (a *Agent) Count(path string) int {
	n := 0
	for _, r := range a.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Subscribers returns the number of open event streams.
func (a *Agent) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

// WaitForSubscribers blocks until n event streams are open or timeout
// passes. It reports whether n was reached.
func (a *Agent) WaitForSubscribers(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if a.Subscribers() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Push sends ev to every open event stream.
func (a *Agent) Push(ev update.UpdateEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return a.PushRaw(b)
}

// PushRaw sends msg as a text frame to every open event stream.
func (a *Agent) PushRaw(msg []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.conns {
		_ = c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}
	}
	return nil
}

// CloseStreams ends every open event stream with a normal closure.
func (a *Agent) CloseStreams() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.conns {
		deadline := time.Now().Add(time.Second)
		_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	}
}

func (a *Agent) record(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		f := a.failures[r.URL.Path]
		a.mu.Unlock()

		if f != nil {
			if f.Code == "" && f.Message == "" {
				w.WriteHeader(f.Status)
				return
			}
			writeJSON(w, f.Status, map[string]string{"code": f.Code, "message": f.Message})
			return
		}
		next(w, r)
	}
}

func (a *Agent) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	a.mu.Lock()
	a.conns[c] = struct{}{}
	a.mu.Unlock()

	// read pump; returns once the client goes away
	go func() {
		defer func() {
			a.mu.Lock()
			delete(a.conns, c)
			a.mu.Unlock()
			_ = c.Close()
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
