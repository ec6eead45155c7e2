package common

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(httpRequestsCounter)
	prometheus.MustRegister(httpRequestsInFlightGauge)
}

var httpRequestsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emsbot_http_requests_total",
		Help: "Count of http requests received by the api, by method and path",
	},
	[]string{"method", "path"},
)

var httpRequestsInFlightGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "emsbot_http_requests_in_flight",
		Help: "Number of http requests currently being handled, by method and path",
	},
	[]string{"method", "path"},
)
