package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

var (
	RelayEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "relay",
		Name:      "events_total",
		Help:      "Inbound events handled by the push relay, by type.",
	}, []string{"type"})

	RelayConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signal",
		Subsystem: "relay",
		Name:      "connections",
		Help:      "Currently open relay connections.",
	})

	MailboxOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "mailbox",
		Name:      "ops_total",
		Help:      "Mailbox store operations, by op and signal kind.",
	}, []string{"op", "kind"})

	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signal",
		Subsystem: "chat",
		Name:      "messages_total",
		Help:      "Chat messages appended to the log.",
	})
)
