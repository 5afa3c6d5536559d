package update

import (
	"context"
	"fmt"
	"time"
)

// DownloadUpdate fetches the available update, reporting start and then
// completion or failure to handler. It blocks until the fetch returns.
// Failures are only visible through handler, which may be nil.
//
// A call made while another download is outstanding reports a single
// DownloadError carrying ErrDownloadInProgress.
func (p *Provider) DownloadUpdate(ctx context.Context, handler DownloadHandler) {
	emit := func(ev DownloadEvent) {
		if handler != nil {
			handler(ev)
		}
	}

	if !p.downloading.CompareAndSwap(false, true) {
		emit(DownloadEvent{Type: DownloadError, Err: ErrDownloadInProgress})
		return
	}
	defer p.downloading.Store(false)

	emit(DownloadEvent{Type: DownloadStart})
	if err := p.native.FetchUpdate(ctx); err != nil {
		p.log.Errorf("Update download failed: %v", err)
		emit(DownloadEvent{Type: DownloadError, Err: err})
		return
	}
	p.log.Infof("Update downloaded")
	emit(DownloadEvent{Type: DownloadComplete})
}

// DownloadAndRunUpdate fetches the available update, waits for the
// configured reload delay and reloads the application into it.
func (p *Provider) DownloadAndRunUpdate(ctx context.Context) error {
	if !p.downloading.CompareAndSwap(false, true) {
		return ErrDownloadInProgress
	}
	defer p.downloading.Store(false)

	if err := p.native.FetchUpdate(ctx); err != nil {
		return fmt.Errorf("failed to fetch update: %w", err)
	}

	if p.reloadDelay > 0 {
		p.log.Debugf("Waiting %s before reload", p.reloadDelay)
		timer := time.NewTimer(p.reloadDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return p.RunUpdate(ctx)
}

// RunUpdate reloads the application. It does not check that an update
// was downloaded first.
func (p *Provider) RunUpdate(ctx context.Context) error {
	p.log.Infof("Reloading into the downloaded update")
	if err := p.native.Reload(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return nil
}
