package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often an open wheel is refreshed
const DefaultPollInterval = 5 * time.Second

// Poller refreshes a session on a fixed interval until stopped. Fetch
// errors are logged and the next tick tries again.
type Poller struct {
	session  *Session
	interval time.Duration
	logger   *zap.Logger

	startOnce   sync.Once
	stopOnce    sync.Once
	started     atomic.Bool
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewPoller creates a poller for s. A non-positive interval means
// DefaultPollInterval.
func NewPoller(s *Session, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		session:     s,
		interval:    interval,
		logger:      logger.Named("poller"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start begins polling in the background. Later calls do nothing.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		p.logger.Info("Starting wheel poller", zap.Duration("interval", p.interval))
		go p.loop(ctx)
	})
}

// Stop halts polling started by Start and waits for an in-progress refresh
// to return. Stopping a poller that never started returns at once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	if !p.started.Load() {
		return
	}
	<-p.stoppedChan
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.stoppedChan)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	applied, err := p.session.Refresh(ctx)
	if err != nil {
		p.logger.Warn("Background refresh failed", zap.Error(err))
		return
	}
	if !applied {
		p.logger.Debug("Background refresh dropped")
	}
}
