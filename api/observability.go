package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/tidepool/game"
)

// Metrics carry no per-creature labels.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tidepool_tick_duration_seconds",
		Help:    "Average step duration over the perf window, sampled at publish",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	})

	creatureCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tidepool_creatures",
		Help: "Living creatures",
	})

	creatureMinimum = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tidepool_creature_minimum",
		Help: "Population floor held by stabilization",
	})

	worldYear = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tidepool_year",
		Help: "World clock in years",
	})

	worldTemperature = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tidepool_temperature",
		Help: "Current growth signal",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_events_total",
		Help: "Simulation events by type",
	}, []string{"type"}) // birth, death, rescue_spawn, save, temperature_swap

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_commands_total",
		Help: "Commands received over HTTP and websocket by result",
	}, []string{"result"}) // accepted, unknown, rejected, queue_full, rate_limited, error

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tidepool_websocket_connections_active",
		Help: "Currently connected websocket clients",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tidepool_websocket_broadcasts_total",
		Help: "Broadcast messages sent",
	})
)

// ObserveView updates metrics from a published view.
func ObserveView(v *game.View) {
	tickDuration.Observe(v.AvgTick.Seconds())
	creatureCount.Set(float64(v.Creatures))
	creatureMinimum.Set(float64(v.Minimum))
	worldYear.Set(v.Year)
	worldTemperature.Set(v.Temperature)
	for _, e := range v.Events {
		eventsTotal.WithLabelValues(e.Type.String()).Inc()
	}
}

// RecordCommand counts a command by result.
func RecordCommand(result string) {
	commandsTotal.WithLabelValues(result).Inc()
}

// UpdateWSConnections sets the websocket connection gauge.
func UpdateWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}

// IncrementWSMessages counts a broadcast.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// StartDebugServer serves /metrics and pprof on addr in the background.
// It returns the server so the caller can shut it down.
func StartDebugServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("debug server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("debug server error", "error", err)
		}
	}()
	return srv
}
