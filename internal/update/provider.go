package update

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultReloadDelay is the pause DownloadAndRunUpdate leaves between a
// finished fetch and the reload.
const DefaultReloadDelay = 2 * time.Second

var (
	// ErrDownloadInProgress rejects a download started while another one
	// is still outstanding.
	ErrDownloadInProgress = errors.New("a download is already in progress")

	// ErrReloadFailed wraps the agent's error when a reload fails.
	ErrReloadFailed = errors.New("failed to reload")

	// ErrAlreadyListening rejects a second concurrent Listen.
	ErrAlreadyListening = errors.New("update events already have a listener")
)

// Native is the update agent the provider drives.
type Native interface {
	Checker
	FetchUpdate(ctx context.Context) error
	Reload(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan UpdateEvent, error)
}

// Config configures a Provider.
type Config struct {
	Native           Native
	CurrentlyRunning CurrentlyRunning

	// ReloadDelay is the pause between fetch and reload in
	// DownloadAndRunUpdate. Zero selects DefaultReloadDelay, a negative
	// value disables the pause.
	ReloadDelay time.Duration

	Logger Logger

	// Now stamps LastCheckForUpdateTime. Defaults to time.Now.
	Now func() time.Time
}

type listener struct {
	id int
	fn func(Info)
}

// Provider owns the Info snapshot for the lifetime of the process and
// drives the check, download and reload operations of the agent.
//
// All writes to the snapshot go through apply. Each write carries the
// sequence number taken when its operation started, and a write older
// than the last applied one is dropped.
type Provider struct {
	native      Native
	running     CurrentlyRunning
	reloadDelay time.Duration
	log         Logger
	now         func() time.Time

	seq atomic.Uint64

	// writeMu orders apply and listener notification.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	info      Info
	applied   uint64
	listeners []listener
	nextID    int

	checks      singleflight.Group
	downloading atomic.Bool
	listening   atomic.Bool
}

// New returns a Provider whose initial snapshot only carries the
// currently running update.
func New(cfg *Config) (*Provider, error) {
	if cfg == nil || cfg.Native == nil {
		return nil, errors.New("update: a native update agent is required")
	}

	p := &Provider{
		native:      cfg.Native,
		running:     cfg.CurrentlyRunning,
		reloadDelay: cfg.ReloadDelay,
		log:         cfg.Logger,
		now:         cfg.Now,
		info:        Info{CurrentlyRunning: cfg.CurrentlyRunning},
	}
	if p.reloadDelay == 0 {
		p.reloadDelay = DefaultReloadDelay
	}
	if p.log == nil {
		p.log = noopLogger{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Info returns the current snapshot.
func (p *Provider) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.info
}

// Subscribe registers fn to receive every snapshot applied from now on.
// fn runs on the goroutine that produced the snapshot and must not call
// CheckForUpdate or wait on Listen. The returned func removes fn and may
// be called more than once.
func (p *Provider) Subscribe(fn func(Info)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners = append(p.listeners, listener{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, l := range p.listeners {
				if l.id == id {
					p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// apply replaces the snapshot with info unless a newer write already
// landed. It reports whether info was applied.
func (p *Provider) apply(seq uint64, info Info) bool {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if seq < p.applied {
		p.mu.Unlock()
		p.log.Debugf("Dropping stale update info (seq %d, last applied %d)", seq, p.applied)
		return false
	}
	p.applied = seq
	p.info = info
	listeners := make([]listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		l.fn(info)
	}
	return true
}

// CheckForUpdate asks the agent for an update, applies the answer to the
// snapshot and returns the snapshot. Failures are reported through
// Info.Err. When a newer write landed while the check was in flight, the
// answer is dropped and the newer snapshot is returned instead.
//
// Calls that overlap an outstanding check share its result, including
// the context that check was started with.
func (p *Provider) CheckForUpdate(ctx context.Context) Info {
	v, _, _ := p.checks.Do("check", func() (interface{}, error) {
		seq := p.seq.Add(1)
		p.log.Debugf("Checking for update (seq %d)", seq)
		info := CheckAndReturnInfo(ctx, p.native, p.running, p.now)
		if info.Err != nil {
			p.log.Warnf("Update check failed: %v", info.Err)
		}
		if !p.apply(seq, info) {
			return p.Info(), nil
		}
		return info, nil
	})
	return v.(Info)
}

// Listen consumes the agent's update events until the stream ends or ctx
// is done, replacing the snapshot for each event. Only one Listen may run
// at a time.
func (p *Provider) Listen(ctx context.Context) error {
	if !p.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}
	defer p.listening.Store(false)

	events, err := p.native.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to update events: %w", err)
	}
	p.log.Infof("Listening for update events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				p.log.Infof("Update event stream closed")
				return nil
			}
			seq := p.seq.Add(1)
			p.log.Debugf("Received %s event (seq %d)", ev.Type, seq)
			p.apply(seq, InfoFromEvent(p.running, ev, p.now()))
		}
	}
}
