package executor

import "github.com/prometheus/client_golang/prometheus"

var (
	txCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "executor",
		Name:      "tx_counter",
		Help:      "The total number of applied transactions by receipt status",
	}, []string{"status"})

	applyTxDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "axiom_custody",
		Subsystem: "executor",
		Name:      "apply_tx_duration_second",
		Help:      "The latency of applying one transaction",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	commitBlockDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "axiom_custody",
		Subsystem: "executor",
		Name:      "commit_block_duration_second",
		Help:      "The latency of persisting a block",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	})

	committedHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_custody",
		Subsystem: "executor",
		Name:      "committed_height",
		Help:      "The height of the last committed block",
	})

	committedLogsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "executor",
		Name:      "committed_logs_counter",
		Help:      "The total number of logs in committed blocks",
	})
)

func init() {
	prometheus.MustRegister(txCounter)
	prometheus.MustRegister(applyTxDuration)
	prometheus.MustRegister(commitBlockDuration)
	prometheus.MustRegister(committedHeight)
	prometheus.MustRegister(committedLogsCounter)
}
