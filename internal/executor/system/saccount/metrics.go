package saccount

import "github.com/prometheus/client_golang/prometheus"

const (
	resultAccepted      = "accepted"
	resultNonceMismatch = "nonce_mismatch"
	resultBadSignature  = "bad_signature"
	resultPaymentFailed = "payment_failed"
)

var (
	accountCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "saccount",
		Name:      "account_created_counter",
		Help:      "The total number of accounts created by the factory",
	})

	validateOperationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "saccount",
		Name:      "validate_operation_counter",
		Help:      "The total number of validated operations by result",
	}, []string{"result"})

	recoveryExecutedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "saccount",
		Name:      "recovery_executed_counter",
		Help:      "The total number of owners replaced by guardian recovery",
	})

	upgradeCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "saccount",
		Name:      "upgrade_counter",
		Help:      "The total number of account logic upgrades",
	})
)

func init() {
	prometheus.MustRegister(accountCreatedCounter)
	prometheus.MustRegister(validateOperationCounter)
	prometheus.MustRegister(recoveryExecutedCounter)
	prometheus.MustRegister(upgradeCounter)
}
