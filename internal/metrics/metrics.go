// Package metrics exposes transition counters for the ops dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DealsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_deals_accepted_total",
		Help: "Brand accepts that reached accepted_verified.",
	})
	DealsDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_deals_declined_total",
		Help: "Brand declines.",
	})
	DealsCountered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_deals_countered_total",
		Help: "Brand counter offers.",
	})
	ContractsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_contracts_generated_total",
		Help: "Contract documents generated and stored.",
	})
	ContractFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_contract_failures_total",
		Help: "Contract pipeline runs that failed and need a retry.",
	})
	SignaturesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nb_signatures_executed_total",
		Help: "Per-role signatures written.",
	})
)
