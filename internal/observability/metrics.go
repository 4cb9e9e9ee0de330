package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trailmeter_sessions_started_total",
		Help: "Tracking sessions that reached the active state",
	})
	SessionsStopped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trailmeter_sessions_stopped_total",
		Help: "Tracking sessions ended by a stop action",
	})
	StartFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailmeter_start_failures_total",
		Help: "Start attempts that failed, by classified kind",
	}, []string{"kind"})
	ReadingsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trailmeter_readings_accepted_total",
		Help: "Position readings folded into the distance total",
	})
	WatchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailmeter_watch_errors_total",
		Help: "Errors delivered on the continuous subscription, by kind",
	}, []string{"kind"})
	DistanceMeters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trailmeter_session_distance_meters",
		Help: "Accumulated distance of the current session",
	})
)

func StartMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	_ = http.ListenAndServe(":"+port, nil)
}
