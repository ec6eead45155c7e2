package approvals

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(requestsDecidedCounter)
	prometheus.MustRegister(decisionsRejectedCounter)
}

var requestsDecidedCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emsbot_requests_decided_total",
		Help: "Total number of requests that reached a terminal state",
	},
	[]string{"kind", "status"},
)

var decisionsRejectedCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emsbot_decisions_rejected_total",
		Help: "Total number of decision attempts that were turned away",
	},
	[]string{"reason"},
)
