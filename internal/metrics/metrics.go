// Package metrics defines the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesSubmitted counts accepted vote upserts.
	VotesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_votes_submitted_total",
		Help: "Number of votes accepted (re-votes included).",
	})

	// ConsensusCommits counts winning-proposal commits. At most one per trip.
	ConsensusCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_consensus_commits_total",
		Help: "Number of trips that committed a winning proposal.",
	})

	// ExpensesRecorded counts stored expenses.
	ExpensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_expenses_recorded_total",
		Help: "Number of expenses recorded.",
	})

	// SettlementsComputed counts settlement computations.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_settlements_computed_total",
		Help: "Number of settlement computations served.",
	})

	// CurrencyCacheHits counts rate-table cache hits.
	CurrencyCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_currency_cache_hits_total",
		Help: "Number of rate lookups served from the cache.",
	})

	// CurrencyCacheMisses counts rate-table cache misses.
	CurrencyCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_currency_cache_misses_total",
		Help: "Number of rate lookups that required a fetch.",
	})

	// CurrencyFetchFailures counts failed rate fetches (degraded conversions).
	CurrencyFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitplan_currency_fetch_failures_total",
		Help: "Number of rate-table fetches that failed.",
	})

	// RPCDuration observes per-procedure latency.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitplan_rpc_duration_seconds",
		Help:    "RPC latency by procedure and outcome code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure", "code"})
)
