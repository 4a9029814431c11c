// Copyright 2025 Certen Protocol
//
// Package metrics exposes the ambient prometheus instruments the commit
// processor and scenario runner update as they execute. The teacher
// depends on client_golang but never registers a collector with it; here
// the dependency is actually exercised.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Commits counts CommitTransaction outcomes, labeled "ok",
// "failed_authorizations" or "unique_key_violation".
var Commits = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "scenario_ledger_commits_total",
	Help: "Total number of transactions submitted to the ledger, by result.",
}, []string{"result"})

// AuthorizationFailures counts individual node-level authorization
// failures recorded across all commits (accepted or rejected).
var AuthorizationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "scenario_ledger_authorization_failures_total",
	Help: "Total number of per-node authorization failures recorded by the enricher.",
}, []string{"tag"})

// ActiveContracts reports the current size of the ledger's active
// contract set. Callers update it after every mutating operation since
// it is a point-in-time gauge, not a monotone counter.
var ActiveContracts = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "scenario_ledger_active_contracts",
	Help: "Current number of active contracts in the most recently committed ledger value.",
})

// Registry bundles the collectors above for callers that want to
// register them against a non-default prometheus registry (the scenario
// runner registers them against its own prometheus.NewRegistry() at
// startup).
var Registry = []prometheus.Collector{Commits, AuthorizationFailures, ActiveContracts}

// MustRegister registers every collector in Registry against reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Registry...)
}
