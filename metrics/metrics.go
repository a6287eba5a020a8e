package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 会话同步相关指标
var (
	// HTTP 请求计数
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTP 请求耗时
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "route"},
	)

	// 房主动作计数，result: ok, not_found, forbidden
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listen",
			Subsystem: "sync",
			Name:      "actions_total",
			Help:      "Host actions applied to sessions",
		},
		[]string{"action", "result"},
	)

	// 听众轮询计数
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listen",
			Subsystem: "sync",
			Name:      "polls_total",
			Help:      "Listener state polls",
		},
		[]string{"result"},
	)

	// 存储操作计数，backend: redis, memory
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listen",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Session store operations by backend",
		},
		[]string{"backend", "operation", "status"},
	)

	// 内存回退存储清理掉的会话数
	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "listen",
			Subsystem: "store",
			Name:      "sessions_evicted_total",
			Help:      "Sessions evicted from the in-memory fallback by cleanup",
		},
	)
)
