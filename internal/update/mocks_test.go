package update

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

// mockNative implements Native for testing.
type mockNative struct {
	mu sync.Mutex

	checkFn      func(ctx context.Context) (CheckResult, error)
	fetchFn      func(ctx context.Context) error
	reloadErr    error
	events       chan UpdateEvent
	subscribeErr error

	checks  int
	fetches int
	reloads []time.Time
}

func (m *mockNative) CheckForUpdate(ctx context.Context) (CheckResult, error) {
	m.mu.Lock()
	m.checks++
	fn := m.checkFn
	m.mu.Unlock()
	if fn == nil {
		return CheckResult{}, nil
	}
	return fn(ctx)
}

func (m *mockNative) FetchUpdate(ctx context.Context) error {
	m.mu.Lock()
	m.fetches++
	fn := m.fetchFn
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *mockNative) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads = append(m.reloads, time.Now())
	return m.reloadErr
}

func (m *mockNative) Subscribe(ctx context.Context) (<-chan UpdateEvent, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	return m.events, nil
}

func (m *mockNative) counts() (checks, fetches, reloads int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks, m.fetches, len(m.reloads)
}

// fixedClock returns a Now func that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testRunning = CurrentlyRunning{
	UpdateID:         "0000-1111",
	Channel:          "main",
	IsEmbeddedLaunch: true,
	RuntimeVersion:   "1.0.0",
}

func newTestProvider(native *mockNative) *Provider {
	p, err := New(&Config{
		Native:           native,
		CurrentlyRunning: testRunning,
		ReloadDelay:      -1,
	})
	if err != nil {
		panic(err)
	}
	return p
}
