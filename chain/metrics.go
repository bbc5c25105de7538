package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mTxCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "propshare",
		Subsystem: "chain",
		Name:      "tx_committed_total",
		Help:      "Number of committed transactions",
	})
	mTxFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "propshare",
		Subsystem: "chain",
		Name:      "tx_failed_total",
		Help:      "Number of transactions rolled back",
	})
	mEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propshare",
		Subsystem: "chain",
		Name:      "events_total",
		Help:      "Number of events appended to the log",
	}, []string{"name"})
	mHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "propshare",
		Subsystem: "chain",
		Name:      "height",
		Help:      "Height of the last committed transaction",
	})
	mCommitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "propshare",
		Subsystem: "chain",
		Name:      "commit_duration_seconds",
		Help:      "Time spent encoding and persisting a transaction",
		Buckets:   prometheus.DefBuckets,
	})
)
