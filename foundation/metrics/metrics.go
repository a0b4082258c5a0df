// Package metrics maintains the Prometheus counters for node activity.
// The counters are exposed on the debug mux next to pprof and expvar.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlocksMined counts blocks this node mined and appended to its
	// local chain.
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "node",
		Name:      "blocks_mined_total",
		Help:      "Number of blocks mined locally and appended to the chain.",
	})

	// ChainsReplaced counts wholesale chain replacements after consensus
	// resolution favored a remote chain.
	ChainsReplaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "node",
		Name:      "chains_replaced_total",
		Help:      "Number of times the local chain was replaced by a remote chain.",
	})

	// MiningCancels counts in-flight mining operations abandoned because
	// the chain moved underneath them or the node shut down.
	MiningCancels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "node",
		Name:      "mining_cancels_total",
		Help:      "Number of in-flight mining operations that were canceled.",
	})

	// EnvelopesRejected counts inbound gossip messages dropped because
	// they failed decode or validation.
	EnvelopesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "p2p",
		Name:      "envelopes_rejected_total",
		Help:      "Number of inbound gossip messages rejected as malformed.",
	})

	// EnvelopesDropped counts inbound gossip messages shed by the rate
	// limiter before decoding.
	EnvelopesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "p2p",
		Name:      "envelopes_dropped_total",
		Help:      "Number of inbound gossip messages dropped by the rate limiter.",
	})
)
