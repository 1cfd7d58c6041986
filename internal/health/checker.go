package health

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/JimCorrell/ScribeStack/internal/storage"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) (Status, error)

// Report is the outcome of running every registered check
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks,omitempty"`
	Version   string        `json:"version,omitempty"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Checker manages health checks
type Checker struct {
	checks  map[string]CheckFunc
	mu      sync.RWMutex
	version string
}

// NewChecker creates a new health checker
func NewChecker(version string) *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		version: version,
	}
}

// Register adds a health check
func (h *Checker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes all registered checks in name order
func (h *Checker) Run(ctx context.Context) Report {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	report := Report{Status: StatusHealthy, Version: h.version}
	for _, name := range names {
		status, err := checks[name](ctx)
		result := CheckResult{Name: name, Status: status}
		if err != nil {
			result.Error = err.Error()
		}
		report.Checks = append(report.Checks, result)

		// Determine overall status
		if status == StatusUnhealthy {
			report.Status = StatusUnhealthy
		} else if status == StatusDegraded && report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	report.Timestamp = time.Now()
	return report
}

// StorageCheck writes, reads back and deletes a probe object
func StorageCheck(adapter storage.Adapter, probePath string) CheckFunc {
	return func(ctx context.Context) (Status, error) {
		payload := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		if err := adapter.Put(ctx, probePath, bytes.NewReader(payload)); err != nil {
			return StatusUnhealthy, err
		}
		defer adapter.Delete(ctx, probePath)

		r, err := adapter.Get(ctx, probePath)
		if err != nil {
			return StatusUnhealthy, err
		}
		defer r.Close()
		got, err := io.ReadAll(r)
		if err != nil {
			return StatusUnhealthy, err
		}
		if !bytes.Equal(got, payload) {
			return StatusDegraded, fmt.Errorf("probe read back %d bytes, wrote %d", len(got), len(payload))
		}
		return StatusHealthy, nil
	}
}
