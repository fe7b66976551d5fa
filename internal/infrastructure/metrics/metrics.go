package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the OAuth and webhook flows.
type Metrics struct {
	InstallsStarted   prometheus.Counter
	InstallsCompleted prometheus.Counter
	OAuthFailures     *prometheus.CounterVec
	WebhooksReceived  *prometheus.CounterVec
	WebhooksRejected  prometheus.Counter
}

// New registers the flow metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InstallsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dropx_installs_started_total",
			Help: "Install requests that generated an authorization redirect.",
		}),
		InstallsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dropx_installs_completed_total",
			Help: "OAuth callbacks that completed token exchange and persistence.",
		}),
		OAuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dropx_oauth_failures_total",
			Help: "OAuth flow failures by stage.",
		}, []string{"stage"}),
		WebhooksReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dropx_webhooks_received_total",
			Help: "Verified webhooks received by topic.",
		}, []string{"topic"}),
		WebhooksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "dropx_webhooks_rejected_total",
			Help: "Webhooks rejected for a missing or invalid signature.",
		}),
	}
}
