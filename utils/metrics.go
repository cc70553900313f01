package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Counter: общее количество HTTP запросов
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Histogram: время выполнения запросов
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	// Counter: отметки выполнения привычек, по исходу
	CompletionToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_completion_toggles_total",
			Help: "Habit completion toggles by outcome",
		},
		[]string{"outcome"}, // confirmed / rolled_back
	)

	// Counter: количество ошибок
	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_errors_total",
			Help: "Total app errors",
		},
		[]string{"handler", "type"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, CompletionToggles, ErrorCount)
}
