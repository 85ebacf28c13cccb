package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ieee-quiz/internal/domain"
)

const (
	namespace     = "ieee_quiz"
	scrapeTimeout = 2 * time.Second
)

// Metrics holds Prometheus collectors for quiz sessions. It implements app.Observer.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive  prometheus.Gauge
	EventsTotal     *prometheus.CounterVec
	QuizzesFinished prometheus.Counter
	FinalScore      prometheus.Histogram
}

// New registers the quiz collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open quiz sessions",
		}),
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Quiz events dispatched by players and loaders",
			},
			[]string{"type"},
		),
		QuizzesFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_finished_total",
			Help:      "Number of quiz runs that reached the finish screen",
		}),
		FinalScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score_points",
			Help:      "Points scored by finished quiz runs",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WatchLiveSessions exports the number of live sessions reported by count,
// which may include sessions served by other instances. It is evaluated on
// every scrape; a failing count reports -1.
func (m *Metrics) WatchLiveSessions(count func(context.Context) (int, error)) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Live quiz sessions across all instances",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
			defer cancel()
			n, err := count(ctx)
			if err != nil {
				return -1
			}
			return float64(n)
		},
	))
}

func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed(domain.State) {
	m.SessionsActive.Dec()
}

func (m *Metrics) EventDispatched(ev domain.EventType, state domain.State) {
	m.EventsTotal.WithLabelValues(string(ev)).Inc()
	if ev == domain.EventFinish {
		m.QuizzesFinished.Inc()
		m.FinalScore.Observe(float64(state.Points))
	}
}
