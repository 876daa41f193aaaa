// Package metrics declares the Prometheus collectors of the ledger. They register with the
// default registry and are served by promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)

var Distributions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "referral_ledger",
	Subsystem: "distributor",
	Name:      "units_total",
	Help:      "Units of work run by the distributor, by operation and outcome.",
}, []string{"operation", "outcome"})

var DistributedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "referral_ledger",
	Subsystem: "distributor",
	Name:      "distributed_amount_total",
	Help:      "Money credited to upline members and funds, by operation and role.",
}, []string{"operation", "role"})

var UnassignedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "referral_ledger",
	Subsystem: "distributor",
	Name:      "unassigned_amount_total",
	Help:      "Upgrade commission that had no ancestor to go to.",
}, []string{"operation"})

var Retries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "referral_ledger",
	Subsystem: "distributor",
	Name:      "retries_total",
	Help:      "Units of work retried after a concurrency conflict.",
}, []string{"operation"})

var Duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "referral_ledger",
	Subsystem: "distributor",
	Name:      "duration_seconds",
	Help:      "Wall time of a distributor operation including retries.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

var RequestReviews = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "referral_ledger",
	Subsystem: "requests",
	Name:      "reviews_total",
	Help:      "Deposit and withdrawal requests reviewed, by kind and resulting status.",
}, []string{"kind", "status"})

// AddAmount adds a decimal amount to a counter. Counters are float64, so this is for
// dashboards only; the ledger rows are the source of truth.
func AddAmount(c prometheus.Counter, amount decimal.Decimal) {
	if f, _ := amount.Float64(); f > 0 {
		c.Add(f)
	}
}
