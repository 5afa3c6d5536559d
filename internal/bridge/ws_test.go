package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/pushchain/push-ota/internal/bridge/bridgetest"
	"github.com/pushchain/push-ota/internal/update"
)

func recv(t *testing.T, ch <-chan update.UpdateEvent) (update.UpdateEvent, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return update.UpdateEvent{}, false
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantOK bool
		want   update.UpdateEventType
	}{
		{name: "no update", in: `{"type":"noUpdateAvailable"}`, wantOK: true, want: update.UpdateEventNoUpdateAvailable},
		{name: "error", in: `{"type":"error","message":"boom"}`, wantOK: true, want: update.UpdateEventError},
		{name: "missing type", in: `{"message":"x"}`},
		{name: "not json", in: `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := parseEvent([]byte(tt.in))
			if ok != tt.wantOK {
				t.Fatalf("parseEvent(%s) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && ev.Type != tt.want {
				t.Errorf("Type = %q, want %q", ev.Type, tt.want)
			}
		})
	}
}

func TestSubscribe_Events(t *testing.T) {
	agent := bridgetest.NewAgent(testRunning)
	defer agent.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := newTestClient(t, agent).Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !agent.WaitForSubscribers(1, 2*time.Second) {
		t.Fatal("agent never saw the subscriber")
	}
	if agent.Count(eventsPath) != 1 {
		t.Errorf("events path called %d times", agent.Count(eventsPath))
	}

	_ = agent.PushRaw([]byte("not an event"))
	_ = agent.Push(update.UpdateEvent{
		Type:     update.UpdateEventUpdateAvailable,
		Manifest: &update.Manifest{ID: "0000-3333"},
	})
	_ = agent.Push(update.UpdateEvent{Type: update.UpdateEventError, Message: "boom"})

	ev, ok := recv(t, events)
	if !ok || ev.Type != update.UpdateEventUpdateAvailable || ev.Manifest == nil || ev.Manifest.ID != "0000-3333" {
		t.Fatalf("first event = %+v (ok=%v), want updateAvailable 0000-3333", ev, ok)
	}
	ev, ok = recv(t, events)
	if !ok || ev.Type != update.UpdateEventError || ev.Message != "boom" {
		t.Fatalf("second event = %+v (ok=%v), want error boom", ev, ok)
	}
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	agent := bridgetest.NewAgent(testRunning)
	defer agent.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := newTestClient(t, agent).Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !agent.WaitForSubscribers(1, 2*time.Second) {
		t.Fatal("agent never saw the subscriber")
	}

	cancel()
	for {
		if _, ok := recv(t, events); !ok {
			break
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for agent.Subscribers() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := agent.Subscribers(); n != 0 {
		t.Errorf("agent still has %d subscribers", n)
	}
}

func TestSubscribe_ClosesWhenAgentCloses(t *testing.T) {
	agent := bridgetest.NewAgent(testRunning)
	defer agent.Close()

	events, err := newTestClient(t, agent).Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !agent.WaitForSubscribers(1, 2*time.Second) {
		t.Fatal("agent never saw the subscriber")
	}

	agent.CloseStreams()
	if _, ok := recv(t, events); ok {
		t.Error("expected closed channel after agent closed the stream")
	}
}

func TestSubscribe_DialError(t *testing.T) {
	agent := bridgetest.NewAgent(testRunning)
	agent.Fail(eventsPath, &bridgetest.Failure{Status: 500, Message: "no streams"})
	defer agent.Close()

	if _, err := newTestClient(t, agent).Subscribe(context.Background()); err == nil {
		t.Error("Subscribe() expected handshake error")
	}
}
