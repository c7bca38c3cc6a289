package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Critical bool      `json:"critical"`
	LastRun  time.Time `json:"last_run"`
}

type registeredCheck struct {
	fn       HealthCheckFunc
	critical bool
}

// HealthChecker runs its registered checks on every request. Only a
// failing critical check makes the service unhealthy.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]registeredCheck
	timeout time.Duration
	started time.Time
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]registeredCheck),
		timeout: timeout,
		started: time.Now(),
	}
}

func (h *HealthChecker) Register(name string, critical bool, fn HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registeredCheck{fn: fn, critical: critical}
}

// Run executes all checks concurrently and reports whether every
// critical one passed.
func (h *HealthChecker) Run(ctx context.Context) ([]HealthCheck, bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]registeredCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheck, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string, rc registeredCheck) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			res := HealthCheck{Name: name, Status: "healthy", Critical: rc.critical}
			if err := rc.fn(cctx); err != nil {
				res.Status = "unhealthy"
				res.Message = err.Error()
			}
			res.LastRun = time.Now()
			results[i] = res
		}(i, name, checks[name])
	}
	wg.Wait()

	healthy := true
	for _, r := range results {
		if r.Critical && r.Status != "healthy" {
			healthy = false
		}
	}
	return results, healthy
}

func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, healthy := h.Run(c.Request.Context())

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(h.started).Round(time.Second).String(),
		})
	}
}

func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
	}
}
