// Package health serves liveness and readiness probes.
//
// Checks run in the background on a fixed interval. A check flips to
// unhealthy after failureThreshold consecutive failures and back after
// successThreshold consecutive successes, so a single slow ping does not take
// the instance out of rotation.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"
)

const (
	failureThreshold = 3
	successThreshold = 1
)

// CheckFunc reports a problem with a dependency, or nil when it is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// Owned by the goroutine running the check.
	fails, oks int
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	return c
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.lastErr.Store(&err)
	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() (string, bool) {
	if c.healthy.Load() {
		return "", false
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Health holds the registered checks and the manual readiness flag.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
}

// New returns a Health that is not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that decides whether the process should
// be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a check that decides whether the instance
// should receive traffic, such as a store ping.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck(name, timeout, fn))
}

// Run executes every check immediately and then on each interval until ctx
// is done. It always returns nil once ctx is cancelled.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	h.mu.RLock()
	checks := slices.Concat(h.liveness, h.readiness)
	h.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				c.run(ctx)
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}

// SetReady sets the manual readiness flag, typically true after startup and
// false when draining for shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the instance is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(h.snapshot(false))) == 0
}

func (h *Health) snapshot(live bool) []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if live {
		return slices.Clone(h.liveness)
	}
	return slices.Clone(h.readiness)
}

func (h *Health) failures(checks []*check) map[string]string {
	out := make(map[string]string)
	for _, c := range checks {
		if msg, bad := c.failure(); bad {
			out[c.name] = msg
		}
	}
	return out
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(h.snapshot(true)))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(h.snapshot(false))
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// writeStatus writes {"status":"ok"} with 200, or 503 with the failing
// checks in name order.
func writeStatus(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				names := make([]string, 0, len(failures))
				for name := range failures {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
