package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlock",
		Subsystem: "session",
		Name:      "messages_sent_total",
		Help:      "Messages written to the room connection, by type.",
	}, []string{"type"})
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlock",
		Subsystem: "session",
		Name:      "messages_received_total",
		Help:      "Messages read from the room connection, by type.",
	}, []string{"type"})
)
