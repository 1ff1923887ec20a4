// Package metrics exposes Prometheus collectors for study activity.
package metrics

import (
	"context"
	"strconv"
	"time"

	"cebuano/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cebuano"

// Metrics records review and request activity
type Metrics struct {
	reviews         *prometheus.CounterVec
	introductions   *prometheus.CounterVec
	limitRejections *prometheus.CounterVec
	intervalDays    *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors already registered under the same name are reused. Any other
// registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reviews := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "study",
			Name:      "reviews_total",
			Help:      "Total number of recorded reviews.",
		},
		[]string{"kind", "rating"},
	)
	introductions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "study",
			Name:      "introductions_total",
			Help:      "Number of items reviewed for the first time.",
		},
		[]string{"kind"},
	)
	limitRejections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "study",
			Name:      "daily_limit_rejections_total",
			Help:      "Review submissions rejected by the daily review cap.",
		},
		[]string{"kind"},
	)
	intervalDays := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "study",
			Name:      "scheduled_interval_days",
			Help:      "Interval in days assigned by the scheduler.",
			Buckets:   []float64{1, 3, 6, 14, 30, 60, 120, 365},
		},
		[]string{"kind"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	for _, target := range []**prometheus.CounterVec{&reviews, &introductions, &limitRejections} {
		if err := reg.Register(*target); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			*target = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	for _, target := range []**prometheus.HistogramVec{&intervalDays, &requestDuration} {
		if err := reg.Register(*target); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			*target = already.ExistingCollector.(*prometheus.HistogramVec)
		}
	}

	return &Metrics{
		reviews:         reviews,
		introductions:   introductions,
		limitRejections: limitRejections,
		intervalDays:    intervalDays,
		requestDuration: requestDuration,
	}
}

// OnReviewRecorded counts a persisted review
func (m *Metrics) OnReviewRecorded(_ context.Context, review domain.RecordedReview) error {
	if m == nil {
		return nil
	}
	kind := string(review.Kind)
	m.reviews.WithLabelValues(kind, string(review.Rating)).Inc()
	if review.Introduced {
		m.introductions.WithLabelValues(kind).Inc()
	}
	m.intervalDays.WithLabelValues(kind).Observe(float64(review.State.Interval))
	return nil
}

// OnDailyLimitReached counts a submission rejected by the daily cap
func (m *Metrics) OnDailyLimitReached(_ context.Context, kind domain.ItemKind, _ string) {
	if m == nil {
		return
	}
	m.limitRejections.WithLabelValues(string(kind)).Inc()
}

// ObserveRequest records the duration of an HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
