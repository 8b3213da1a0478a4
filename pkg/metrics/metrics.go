package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "login_attempts_total", Help: "Login attempts by method and outcome."},
		[]string{"method", "outcome"},
	)
	StudyUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "study_uploads_total", Help: "Medical study uploads by outcome."},
		[]string{"outcome"},
	)
	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "assistant_requests_total", Help: "Help-assistant questions by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(StudyUploads)
	reg.MustRegister(AssistantRequests)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
