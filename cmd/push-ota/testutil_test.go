package main

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pushchain/push-ota/internal/bridge"
	"github.com/pushchain/push-ota/internal/bridge/bridgetest"
	"github.com/pushchain/push-ota/internal/config"
	ui "github.com/pushchain/push-ota/internal/ui"
	"github.com/pushchain/push-ota/internal/update"
)

// lockedBuffer is a bytes.Buffer safe for a writer goroutine and a
// polling test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var testRunning = update.CurrentlyRunning{
	UpdateID:         "0000-1111",
	Channel:          "main",
	IsEmbeddedLaunch: true,
	RuntimeVersion:   "1.0.0",
}

func newTestAgent(t *testing.T) *bridgetest.Agent {
	t.Helper()
	agent := bridgetest.NewAgent(testRunning)
	t.Cleanup(agent.Close)
	return agent
}

// newTestDeps wires a real bridge client to agent and captures output in
// the given format without colors or emoji.
func newTestDeps(t *testing.T, agent *bridgetest.Agent, format string) (*Deps, *lockedBuffer) {
	t.Helper()
	client, err := bridge.New(bridge.Config{BaseURL: agent.URL(), Version: "test"})
	if err != nil {
		t.Fatalf("bridge.New() error = %v", err)
	}

	out := &lockedBuffer{}
	p := ui.NewPrinter(format, out)
	p.Colors.Enabled = false
	p.Colors.EmojiEnabled = false

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.Defaults()
	cfg.HomeDir = t.TempDir()
	cfg.ReloadDelay = 0

	return &Deps{
		Cfg:     cfg,
		Agent:   client,
		Printer: p,
		Output:  out,
		Log:     log,
		IsTTY:   func() bool { return false },
	}, out
}

// resetFlags restores the persistent flags after a test changes them.
func resetFlags(t *testing.T) {
	t.Helper()
	home, agent, channel, output := flagHome, flagAgent, flagChannel, flagOutput
	verbose, quiet, debug := flagVerbose, flagQuiet, flagDebug
	t.Cleanup(func() {
		flagHome, flagAgent, flagChannel, flagOutput = home, agent, channel, output
		flagVerbose, flagQuiet, flagDebug = verbose, quiet, debug
	})
}

func containsAll(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func availableResult(id string) update.CheckResult {
	return update.CheckResult{IsAvailable: true, Manifest: &update.Manifest{
		ID:        id,
		CreatedAt: "2024-05-01T10:00:00Z",
		Extra: map[string]any{
			"expoClient": map[string]any{"extra": map[string]any{"theme": "dark", "eas": map[string]any{"projectId": "p"}}},
		},
	}}
}
