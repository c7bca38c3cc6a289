package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type StatsFunc func() map[string]interface{}

// Metrics counts requests per route and status. Safe for concurrent use.
type Metrics struct {
	mu             sync.RWMutex
	requestCount   int64
	activeRequests int64
	errorCount     int64
	totalDuration  time.Duration
	statusCodes    map[int]int64
	endpoints      map[string]int64
	startTime      time.Time
	lastRequest    time.Time
	sources        map[string]StatsFunc
}

type Snapshot struct {
	RequestCount   int64            `json:"request_count"`
	AvgDurationMs  float64          `json:"avg_request_duration_ms"`
	ActiveRequests int64            `json:"active_requests"`
	ErrorCount     int64            `json:"error_count"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoint_calls"`
	StartTime      time.Time        `json:"start_time"`
	LastRequest    time.Time        `json:"last_request"`
	Uptime         string           `json:"uptime"`
	GoroutineCount int              `json:"goroutine_count"`
	HeapAllocMb    uint64           `json:"heap_alloc_mb"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[int]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
		sources:     make(map[string]StatsFunc),
	}
}

// AddSource includes fn's output under name in the /metrics response.
func (m *Metrics) AddSource(name string, fn StatsFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[name] = fn
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		m.requestCount++
		m.activeRequests--
		m.totalDuration += duration
		m.lastRequest = time.Now()
		if statusCode >= 400 {
			m.errorCount++
		}
		m.statusCodes[statusCode]++
		m.endpoints[c.Request.Method+" "+route]++
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg float64
	if m.requestCount > 0 {
		avg = float64(m.totalDuration.Microseconds()) / float64(m.requestCount) / 1000.0
	}

	s := Snapshot{
		RequestCount:   m.requestCount,
		AvgDurationMs:  avg,
		ActiveRequests: m.activeRequests,
		ErrorCount:     m.errorCount,
		StatusCodes:    make(map[int]int64, len(m.statusCodes)),
		Endpoints:      make(map[string]int64, len(m.endpoints)),
		StartTime:      m.startTime,
		LastRequest:    m.lastRequest,
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
		GoroutineCount: runtime.NumGoroutine(),
	}
	for k, v := range m.statusCodes {
		s.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		s.Endpoints[k] = v
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	s.HeapAllocMb = mem.HeapAlloc / 1024 / 1024
	return s
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"application": m.Snapshot(),
			"timestamp":   time.Now(),
		}

		m.mu.RLock()
		sources := make(map[string]StatsFunc, len(m.sources))
		for k, v := range m.sources {
			sources[k] = v
		}
		m.mu.RUnlock()

		for name, fn := range sources {
			resp[name] = fn()
		}

		c.JSON(http.StatusOK, resp)
	}
}
