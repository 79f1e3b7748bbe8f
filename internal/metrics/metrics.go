// Package metrics holds the Prometheus collectors for the API and the
// transaction engine.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for engine workflows.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeAlreadyCompleted  = "already_completed"
	OutcomeError             = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hamster",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hamster",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "ledger",
			Name:      "purchases_total",
			Help:      "Purchase attempts by outcome.",
		},
		[]string{"outcome"},
	)

	purchasedCents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "ledger",
			Name:      "purchased_cents_total",
			Help:      "Cash spent on successful purchases, in cents.",
		},
	)

	dailySubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "ledger",
			Name:      "daily_submissions_total",
			Help:      "Daily quiz submissions by outcome.",
		},
		[]string{"outcome"},
	)

	rewardedCents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "ledger",
			Name:      "daily_rewarded_cents_total",
			Help:      "Cash paid out for daily quizzes, in cents.",
		},
	)

	outboxPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hamster",
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox events handed to the broker.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		purchases,
		purchasedCents,
		dailySubmissions,
		rewardedCents,
		outboxPublished,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordPurchase counts a purchase attempt. spentCents is ignored unless the
// purchase succeeded.
func RecordPurchase(outcome string, spentCents int64) {
	purchases.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && spentCents > 0 {
		purchasedCents.Add(float64(spentCents))
	}
}

// RecordDailySubmission counts a daily quiz submission.
func RecordDailySubmission(outcome string, rewardCents int64) {
	dailySubmissions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && rewardCents > 0 {
		rewardedCents.Add(float64(rewardCents))
	}
}

// RecordOutboxPublish counts events handed to the broker.
func RecordOutboxPublish(n int, success bool) {
	outboxPublished.WithLabelValues(strconv.FormatBool(success)).Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

var knownPaths = map[string]bool{
	"/":                true,
	"/health":          true,
	"/auth/login":      true,
	"/catalog":         true,
	"/purchase":        true,
	"/daily/questions": true,
	"/daily/answer":    true,
	"/me":              true,
	"/me/transactions": true,
}

// canonicalPath keeps label cardinality bounded: unknown paths collapse to "other".
func canonicalPath(raw string) string {
	p := "/" + strings.Trim(raw, "/")
	if knownPaths[p] {
		return p
	}
	return "other"
}
