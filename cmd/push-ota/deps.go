package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/pushchain/push-ota/internal/bridge"
	"github.com/pushchain/push-ota/internal/config"
	"github.com/pushchain/push-ota/internal/exitcodes"
	ui "github.com/pushchain/push-ota/internal/ui"
	"github.com/pushchain/push-ota/internal/update"
)

// Agent is the update agent as the commands use it.
type Agent interface {
	update.Native
	Constants(ctx context.Context) (update.CurrentlyRunning, error)
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg     config.Config
	Agent   Agent
	Printer ui.Printer
	Output  io.Writer
	Log     logrus.FieldLogger
	IsTTY   func() bool
}

// newDeps creates production dependencies from the current flags and config.
func newDeps() (*Deps, error) {
	if err := validateOutput(); err != nil {
		return nil, err
	}
	cfg, err := loadCfg()
	if err != nil {
		return nil, err
	}
	log := newLogger(os.Stderr)

	client, err := bridge.New(bridge.Config{
		BaseURL: cfg.AgentURL,
		Channel: cfg.Channel,
		Version: Version,
		Timeout: cfg.RequestTimeout,
		Logger:  log.WithField("system", "bridge"),
	})
	if err != nil {
		return nil, exitcodes.ValidationErr("invalid agent URL", err)
	}

	return &Deps{
		Cfg:     cfg,
		Agent:   client,
		Printer: getPrinter(os.Stdout),
		Output:  os.Stdout,
		Log:     log,
		IsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}, nil
}

// newProvider reads the running bundle from the agent and returns a
// provider whose applied snapshots are written to the check cache.
func (d *Deps) newProvider(ctx context.Context) (*update.Provider, error) {
	running, err := d.Agent.Constants(ctx)
	if err != nil {
		return nil, exitcodes.NetworkErr("failed to read running update from agent", err)
	}

	// A zero delay in config means no pause; the provider reads zero as
	// its default.
	delay := d.Cfg.ReloadDelay
	if delay == 0 {
		delay = -1
	}

	p, err := update.New(&update.Config{
		Native:           d.Agent,
		CurrentlyRunning: running,
		ReloadDelay:      delay,
		Logger:           d.Log.WithField("system", "update"),
	})
	if err != nil {
		return nil, err
	}

	p.Subscribe(func(info update.Info) {
		entry := update.CacheEntryFromInfo(info)
		if entry == nil {
			return
		}
		if err := update.SaveCache(d.Cfg.HomeDir, entry); err != nil {
			d.Log.WithError(err).Warn("Failed to write check cache")
		}
	})
	return p, nil
}
