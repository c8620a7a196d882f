package monitoring

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var (
	dispatchQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_queue_length",
			Help: "Jobs currently waiting in the notification dispatch queue",
		},
	)

	notificationDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatches_total",
			Help: "Total notification dispatches by shape and outcome",
		},
		[]string{"kind", "status"},
	)

	notificationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_total",
			Help: "Total notification emails attempted",
		},
		[]string{"status"},
	)

	sweepTransitions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_sweep_transitions_total",
			Help: "Total events moved to finished by the sweep",
		},
	)

	sweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_sweep_runs_total",
			Help: "Total sweep runs by outcome",
		},
		[]string{"status"},
	)
)

type Monitor struct {
	redis    *redis.Client
	queueKey string
}

func NewMonitor(redisClient *redis.Client, queueKey string) *Monitor {
	monitor := &Monitor{redis: redisClient, queueKey: queueKey}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()

		length, err := m.redis.LLen(ctx, m.queueKey).Result()
		if err != nil {
			continue
		}
		dispatchQueueLength.Set(float64(length))
	}
}

// TrackDispatch counts one completed dispatch attempt.
func TrackDispatch(kind, status string) {
	notificationDispatches.WithLabelValues(kind, status).Inc()
}

// TrackEmail counts one attempted delivery.
func TrackEmail(status string) {
	notificationEmails.WithLabelValues(status).Inc()
}

// TrackSweep records a sweep run and how many events it finalized.
func TrackSweep(transitions int, err error) {
	if err != nil {
		sweepRuns.WithLabelValues("error").Inc()
		return
	}
	sweepRuns.WithLabelValues("ok").Inc()
	sweepTransitions.Add(float64(transitions))
}

// StartMetricsServer serves /metrics and /healthz on its own port,
// separate from the application API.
func StartMetricsServer(port string) {
	e := echo.New()

	e.GET("/metrics", func(c echo.Context) error {
		promhttp.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if err := http.ListenAndServe(":"+port, e); err != nil {
		log.Printf("metrics server stopped: %v", err)
	}
}
