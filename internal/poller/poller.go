// Package poller runs a fetch function at a fixed interval for as long as the
// view that owns it is alive.
package poller

import (
	"context"
	"sync"
	"time"

	"training_portal/pkg/logger"
	"training_portal/pkg/monitoring"

	"go.uber.org/zap"
)

type FetchFunc func(ctx context.Context) error

type Poller struct {
	name    string
	fetch   FetchFunc
	trigger chan struct{}

	mu       sync.Mutex
	interval time.Duration
	reset    chan time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(name string, interval time.Duration, fetch FetchFunc) *Poller {
	return &Poller{
		name:     name,
		fetch:    fetch,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		reset:    make(chan time.Duration, 1),
	}
}

func (p *Poller) Name() string {
	return p.name
}

// Start fetches once right away and then on every tick. Calling Start on a
// running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.interval, p.done)
}

func (p *Poller) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.reset:
			ticker.Reset(d)
		case <-p.trigger:
			p.tick(ctx)
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		monitoring.PollerTicks.WithLabelValues(p.name, "error").Inc()
		logger.Log.Warn("Poll failed", zap.String("poller", p.name), zap.Error(err))
		return
	}
	monitoring.PollerTicks.WithLabelValues(p.name, "ok").Inc()
}

// Trigger asks for one extra fetch as soon as possible. Requests made while
// one is already pending are merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// SetInterval changes the period; a running loop picks it up on its next select.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.interval = d
	running := p.done != nil
	p.mu.Unlock()
	if !running {
		return
	}
	select {
	case <-p.reset:
	default:
	}
	select {
	case p.reset <- d:
	default:
	}
}

// Stop cancels the loop and waits for it to exit. No fetch starts after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
