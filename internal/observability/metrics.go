package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

// Metrics is the process-wide registry. All methods are safe on a nil
// receiver so callers never need to check whether metrics are enabled.
type Metrics struct {
	apiRequests *Series
	apiLatency  *Histogram
	apiInflight *Series

	engineOps     *Series
	engineLatency *Histogram
	notifications *Series
	sseEvents     *Series
	sweepRuns     *Series
	sweepUsers    *Series

	dbStats   *Series
	redisUp   *Series
	redisPing *Series
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS")))
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

// Init builds the registry when METRICS_ENABLED is set and returns nil
// otherwise.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounter("wp_api_requests_total", "API requests by method/route/status.", "method", "route", "status"),
		apiLatency: NewHistogram("wp_api_request_duration_seconds", "API request latency in seconds.",
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}, "method", "route"),
		apiInflight: NewGauge("wp_api_inflight_requests", "In-flight API requests."),

		engineOps: NewCounter("wp_engine_operations_total", "Engine operations by name and outcome.", "op", "outcome"),
		engineLatency: NewHistogram("wp_engine_operation_duration_seconds", "Engine operation latency in seconds.",
			[]float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15}, "op"),
		notifications: NewCounter("wp_notifications_total", "Dispatcher outcomes by kind.", "kind", "outcome"),
		sseEvents:     NewCounter("wp_sse_events_total", "SSE events emitted by event name.", "event"),
		sweepRuns:     NewCounter("wp_sweep_runs_total", "Pattern sweep runs by outcome.", "outcome"),
		sweepUsers:    NewCounter("wp_sweep_users_total", "Users processed by the pattern sweep.", "outcome"),

		dbStats:   NewGauge("wp_db_pool", "Database pool statistics.", "stat"),
		redisUp:   NewGauge("wp_redis_up", "1 when the last Redis ping succeeded."),
		redisPing: NewGauge("wp_redis_ping_seconds", "Latency of the last Redis ping."),
	}
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	type writer interface{ WritePrometheus(io.Writer) error }
	for _, s := range []writer{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.engineOps, m.engineLatency, m.notifications, m.sseEvents,
		m.sweepRuns, m.sweepUsers,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveEngine records one engine operation. outcome is "ok", "cache_hit"
// or an error kind.
func (m *Metrics) ObserveEngine(op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.engineOps.Inc(op, outcome)
	m.engineLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncNotification(kind, outcome string) {
	if m != nil {
		m.notifications.Inc(kind, outcome)
	}
}

func (m *Metrics) IncSSEEvent(event string) {
	if m != nil {
		m.sseEvents.Inc(event)
	}
}

func (m *Metrics) ObserveSweep(outcome string, analyzed, failed int) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc(outcome)
	m.sweepUsers.Add(float64(analyzed), "analyzed")
	m.sweepUsers.Add(float64(failed), "failed")
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go m.every(ctx, func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: db stats unavailable", "error", err)
			}
			return
		}
		st := sqlDB.Stats()
		m.dbStats.Set(float64(st.OpenConnections), "open_connections")
		m.dbStats.Set(float64(st.InUse), "in_use")
		m.dbStats.Set(float64(st.Idle), "idle")
		m.dbStats.Set(float64(st.WaitCount), "wait_count")
		m.dbStats.Set(st.WaitDuration.Seconds(), "wait_duration_seconds")
	})
}

// StartRedisCollector pings the shared client; it does not own it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	ticker := time.NewTicker(scrapeInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
