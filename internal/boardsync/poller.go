// Package boardsync keeps a viewing session's copy of the whiteboard current
// by periodic re-fetch. Each poll replaces the whole row set, so reconciliation
// is trivially convergent; correctness only needs stale responses discarded.
package boardsync

import (
	"context"
	"sync"
	"time"

	"github.com/clearpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/clearpaw/vetclinic-platform/internal/whiteboard"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// FetchFunc loads the current projection for the session's clinic/date/filter.
type FetchFunc func(ctx context.Context) ([]whiteboard.Row, error)

// Poller periodically re-fetches the board projection for one viewing
// session. Its lifetime is bound to the session: cancel the Run context on
// teardown and no late response will be applied.
type Poller struct {
	fetch    FetchFunc
	onRows   func([]whiteboard.Row)
	onError  func(error)
	metrics  *metrics.BoardMetrics
	logger   *logging.Logger
	interval time.Duration

	mu      sync.Mutex
	seq     uint64
	applied uint64
}

// New creates a poller delivering row sets to onRows.
func New(fetch FetchFunc, onRows func([]whiteboard.Row)) *Poller {
	if fetch == nil {
		panic("boardsync: fetch func required")
	}
	if onRows == nil {
		panic("boardsync: row sink required")
	}
	return &Poller{
		fetch:    fetch,
		onRows:   onRows,
		logger:   logging.Default(),
		interval: 30 * time.Second,
	}
}

func (p *Poller) WithInterval(d time.Duration) *Poller {
	if d > 0 {
		p.interval = d
	}
	return p
}

// WithOnError installs an error sink; fetch failures surface there instead of
// hanging the view. The previous row set stays on screen.
func (p *Poller) WithOnError(fn func(error)) *Poller {
	p.onError = fn
	return p
}

func (p *Poller) WithMetrics(m *metrics.BoardMetrics) *Poller {
	p.metrics = m
	return p
}

func (p *Poller) WithLogger(logger *logging.Logger) *Poller {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Run fetches immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Refresh re-fetches immediately, typically right after a local mutation so
// the actor sees its own write without waiting for the next tick.
func (p *Poller) Refresh(ctx context.Context) {
	p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) {
	token := p.nextToken()
	rows, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// The view is gone; never apply a result after teardown.
		return
	}
	if err != nil {
		p.metrics.ObservePoll("error")
		p.logger.Warn("board poll failed", "error", err)
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	if p.apply(token, rows) {
		p.metrics.ObservePoll("ok")
	} else {
		p.metrics.ObservePoll("stale")
	}
}

func (p *Poller) nextToken() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

// apply delivers rows unless a response from a later-initiated request has
// already been applied. Delivery happens under the lock so row sets reach
// the sink in token order.
func (p *Poller) apply(token uint64, rows []whiteboard.Row) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token <= p.applied {
		return false
	}
	p.applied = token
	p.onRows(rows)
	return true
}
