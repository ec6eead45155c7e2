package requests

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(requestsSubmittedCounter)
}

var requestsSubmittedCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emsbot_requests_submitted_total",
		Help: "Total number of request submissions that passed validation",
	},
	[]string{"kind"},
)
