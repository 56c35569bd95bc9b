// Package llmstatus keeps the header's view of the backend LLM connection
// fresh and loads the settings screen.
package llmstatus

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// DefaultInterval is the time between status checks.
const DefaultInterval = 30 * time.Second

// StatusAPI fetches the LLM status.
type StatusAPI interface {
	GetLLMStatus(ctx context.Context) (*contract.LLMStatus, error)
}

// Snapshot is the header state at one point in time.
type Snapshot struct {
	Loading   bool
	Status    *contract.LLMStatus
	Err       error
	CheckedAt time.Time
}

// Poller periodically refreshes the LLM status. A failed check keeps the
// previous status and only records the error.
type Poller struct {
	api      StatusAPI
	interval time.Duration
	logger   zerolog.Logger
	onUpdate func(Snapshot)

	mu   sync.RWMutex
	snap Snapshot
}

type PollerOption func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// OnUpdate registers a callback invoked after every check. It runs on the
// polling goroutine and must not block.
func OnUpdate(fn func(Snapshot)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

func NewPoller(api StatusAPI, logger zerolog.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		api:      api,
		interval: DefaultInterval,
		logger:   logger,
		snap:     Snapshot{Loading: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Interval() time.Duration { return p.interval }

// Latest returns the most recent snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Run checks immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check performs a single status fetch and returns the resulting snapshot.
// Once ctx is done the result is discarded: the snapshot is left untouched
// and OnUpdate is not called.
func (p *Poller) Check(ctx context.Context) Snapshot {
	status, err := p.api.GetLLMStatus(ctx)
	if ctx.Err() != nil {
		return p.Latest()
	}

	p.mu.Lock()
	p.snap.Loading = false
	p.snap.CheckedAt = time.Now()
	if err != nil {
		p.snap.Err = err
	} else {
		p.snap.Status = status
		p.snap.Err = nil
	}
	snap := p.snap
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to check LLM status")
	} else {
		p.logger.Debug().
			Str("active_llm", status.ActiveLLM).
			Str("connection_status", string(status.ConnectionStatus)).
			Msg("LLM status")
	}
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
	return snap
}

// Headline is the one-line header text for s. It follows the enterprise
// credential flag, not the connection status.
func Headline(s Snapshot) string {
	switch {
	case s.Loading:
		return "Checking LLM..."
	case s.Status != nil && s.Status.EnterpriseConfigured:
		return strings.ToUpper(s.Status.ActiveLLM) + " Enterprise LLM Connected"
	default:
		return "LLM Not Configured"
	}
}
