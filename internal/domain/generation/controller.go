// Package generation holds the state of the data generation screen: the
// form, the in-flight request and the last result.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

var (
	ErrBusy     = errors.New("generation already in progress")
	ErrNoResult = errors.New("no successful generation to hand off")
)

// State is the request lifecycle of the screen.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// API is the subset of the backend client the controller needs.
type API interface {
	GetConfig(ctx context.Context) (*contract.AppConfig, error)
	Generate(ctx context.Context, req contract.GenerationRequest) (*contract.GenerationResponse, error)
}

// Publisher receives the hand-off to the results screen.
type Publisher interface {
	Publish(ctx context.Context, data contract.GeneratedData) error
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State    State
	Config   *contract.AppConfig
	Response *contract.GenerationResponse
	Err      error
}

type Controller struct {
	api    API
	logger zerolog.Logger

	mu     sync.Mutex
	config *contract.AppConfig
	state  State
	resp   *contract.GenerationResponse
	err    error
}

func NewController(api API, logger zerolog.Logger) *Controller {
	return &Controller{api: api, logger: logger}
}

// LoadConfig fetches the backend configuration and replaces any previous one.
func (c *Controller) LoadConfig(ctx context.Context) (*contract.AppConfig, error) {
	cfg, err := c.api.GetConfig(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load config")
		return nil, err
	}
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
	return cfg, nil
}

// Submit validates f and runs one generation. Only one submission may be in
// flight; entering Loading discards the previous result and error.
func (c *Controller) Submit(ctx context.Context, f Form) (*contract.GenerationResponse, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	req := BuildRequest(f)

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateLoading
	c.resp = nil
	c.err = nil
	c.mu.Unlock()

	c.logger.Info().
		Int("resources", len(req.Resources)).
		Int("record_count", req.RecordCount).
		Msg("generation started")

	resp, err := c.api.Generate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		c.err = err
		c.logger.Error().Err(err).Msg("generation failed")
		return nil, err
	}
	c.state = StateSuccess
	c.resp = resp
	return resp, nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Config: c.config, Response: c.resp, Err: c.err}
}

// ResourceSummary describes one resource of a generation response.
type ResourceSummary struct {
	Kind             contract.ResourceKind
	DisplayName      string
	Success          bool
	RecordCount      int
	Error            string
	ValidationErrors []string
}

// Warnings is the number of validation warnings attached to the result.
func (s ResourceSummary) Warnings() int { return len(s.ValidationErrors) }

// Summaries renders every resource of the current response independently,
// in canonical resource order. It is empty unless the state is Success.
func (c *Controller) Summaries() []ResourceSummary {
	snap := c.Snapshot()
	if snap.State != StateSuccess || snap.Response == nil {
		return nil
	}
	return Summarize(snap.Response, snap.Config)
}

// Summarize builds per-resource summaries for resp. cfg supplies display
// names and may be nil.
func Summarize(resp *contract.GenerationResponse, cfg *contract.AppConfig) []ResourceSummary {
	out := make([]ResourceSummary, 0, len(resp.Results))
	for kind, res := range resp.Results {
		out = append(out, ResourceSummary{
			Kind:             kind,
			DisplayName:      cfg.DisplayNameFor(kind),
			Success:          res.Success,
			RecordCount:      len(res.Data),
			Error:            res.Error,
			ValidationErrors: res.ValidationErrors,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := out[i].Kind.Order(), out[j].Kind.Order()
		if oi != oj {
			return oi < oj
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Handoff publishes the successful record sets of the current result so the
// results screen can pick them up.
func (c *Controller) Handoff(ctx context.Context, p Publisher) (contract.GeneratedData, error) {
	snap := c.Snapshot()
	if snap.State != StateSuccess || snap.Response == nil {
		return nil, ErrNoResult
	}
	data := snap.Response.SuccessfulData()
	if err := p.Publish(ctx, data); err != nil {
		return nil, err
	}
	c.logger.Info().Int("resources", len(data)).Msg("results handed off")
	return data, nil
}
