package room

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridlock",
		Subsystem: "room",
		Name:      "players",
		Help:      "Connected players across all rooms.",
	})
	snapshotsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridlock",
		Subsystem: "room",
		Name:      "snapshots_sent_total",
		Help:      "Roster snapshots broadcast to members.",
	})
)
