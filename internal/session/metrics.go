package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sessionsLive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "algebra_sessions_live",
	Help: "Number of expression trees held by the session store",
})

var sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "algebra_sessions_evicted",
	Help: "Number of sessions dropped by the store, including deletes",
})
