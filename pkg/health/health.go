package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"ice-breakun/backend/pkg/logger"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Component is the last observed state of a checked dependency
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Critical    bool      `json:"critical"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check probes one dependency
type Check func(ctx context.Context) (Status, string, error)

type registration struct {
	check    Check
	critical bool
}

// Checker runs health checks and tracks their results
type Checker struct {
	checkPeriod  time.Duration
	checkTimeout time.Duration
	log          *logger.Logger

	mu         sync.RWMutex
	checks     map[string]registration
	components map[string]*Component
	listeners  []func(healthy bool)
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, checkPeriod time.Duration) *Checker {
	if log == nil {
		log = logger.GetGlobal()
	}
	if checkPeriod <= 0 {
		checkPeriod = 30 * time.Second
	}
	return &Checker{
		checkPeriod:  checkPeriod,
		checkTimeout: 5 * time.Second,
		log:          log.WithComponent("health"),
		checks:       make(map[string]registration),
		components:   make(map[string]*Component),
	}
}

// RegisterCheck adds a check. A critical component that is down makes the system unhealthy.
func (c *Checker) RegisterCheck(name string, critical bool, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = registration{check: check, critical: critical}
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Critical:    critical,
		Description: "Not checked yet",
	}
}

// RegisterDatabaseCheck registers the critical database check
func (c *Checker) RegisterDatabaseCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("database", true, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDown, "Database connection failed", err
		}
		return StatusUp, "Database connection is established", nil
	})
}

// OnChange registers fn to be called with the overall health after every run
func (c *Checker) OnChange(fn func(healthy bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// RunChecks executes all registered checks and returns the overall health
func (c *Checker) RunChecks(ctx context.Context) bool {
	c.mu.RLock()
	checks := make(map[string]registration, len(c.checks))
	for name, reg := range c.checks {
		checks[name] = reg
	}
	c.mu.RUnlock()

	results := make(map[string]Component, len(checks))
	for name, reg := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
		status, description, err := reg.check(checkCtx)
		cancel()

		comp := Component{
			Name:        name,
			Status:      status,
			Critical:    reg.critical,
			Description: description,
			LastChecked: time.Now(),
		}
		if err != nil {
			comp.Error = err.Error()
			c.log.Warn("Health check failed", "component", name, "status", string(status), "error", err.Error())
		}
		results[name] = comp
	}

	c.mu.Lock()
	for name, comp := range results {
		comp := comp
		c.components[name] = &comp
	}
	healthy := c.healthyLocked()
	listeners := append([]func(bool){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(healthy)
	}
	return healthy
}

// Start runs the checks now and then every check period until ctx is done
func (c *Checker) Start(ctx context.Context) {
	go func() {
		c.RunChecks(ctx)

		ticker := time.NewTicker(c.checkPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunChecks(ctx)
			}
		}
	}()
}

// GetStatus returns a copy of the component states sorted by name
func (c *Checker) GetStatus() []Component {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Component, 0, len(c.components))
	for _, comp := range c.components {
		out = append(out, *comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsSystemHealthy reports whether every critical component is up
func (c *Checker) IsSystemHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthyLocked()
}

func (c *Checker) healthyLocked() bool {
	for _, comp := range c.components {
		if comp.Critical && comp.Status == StatusDown {
			return false
		}
	}
	return true
}

// Report is the readiness response body
type Report struct {
	Status     string      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Components []Component `json:"components"`
}

// HTTPHandler runs the checks and reports them; 503 when a critical component is down
func (c *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := c.RunChecks(r.Context())

		report := Report{
			Status:     "ok",
			Timestamp:  time.Now().UTC(),
			Components: c.GetStatus(),
		}
		code := http.StatusOK
		if !healthy {
			report.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			c.log.Error("Failed to encode health check response", "error", err.Error())
		}
	}
}
