package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinmuse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skinmuse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	loginOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinmuse_login_outcomes_total",
			Help: "Login step outcomes (otp_sent, otp_resent, invalid_credentials, captcha_failed, ...)",
		},
		[]string{"outcome"},
	)

	otpOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinmuse_otp_verifications_total",
			Help: "OTP verification outcomes",
		},
		[]string{"outcome"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinmuse_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func LoginOutcome(outcome string) {
	loginOutcomesTotal.WithLabelValues(outcome).Inc()
}

func OTPOutcome(outcome string) {
	otpOutcomesTotal.WithLabelValues(outcome).Inc()
}

func RateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
