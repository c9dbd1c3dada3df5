package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	NotifySent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobportal", Name: "notify_sent_total", Help: "Number of notification dispatches delivered, by message kind."},
		[]string{"kind"},
	)
	NotifyFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobportal", Name: "notify_failed_total", Help: "Number of notification dispatches that failed, by message kind."},
		[]string{"kind"},
	)
	NotifyDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "jobportal", Name: "notify_dropped_total", Help: "Number of notifications dropped because the dispatch queue was full."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobportal", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobportal", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(NotifySent)
	reg.MustRegister(NotifyFailed)
	reg.MustRegister(NotifyDropped)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
