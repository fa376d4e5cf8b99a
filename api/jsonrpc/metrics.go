package jsonrpc

import "github.com/prometheus/client_golang/prometheus"

var (
	invokeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "axiom_custody",
		Subsystem: "jsonrpc",
		Name:      "invoke_duration_second",
		Help:      "The latency of a json-rpc request by method",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"method"})

	requestFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "jsonrpc",
		Name:      "request_failed_counter",
		Help:      "The total number of failed json-rpc requests by method",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(invokeDuration)
	prometheus.MustRegister(requestFailedCounter)
}
