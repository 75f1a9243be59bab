package board

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_api_requests_total",
			Help: "Total number of board API calls",
		},
		[]string{"operation", "result"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_api_request_duration_seconds",
			Help:    "Board API call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
