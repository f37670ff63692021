package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NazwanSM/nusavarta-auth/internal/infra/config"
)

// Provider holds the service metric handles.
type Provider struct {
	requestCounter prometheus.Counter
	authOperations *prometheus.CounterVec
	faultsReported prometheus.Counter
}

// Attach registers the service metrics on the default registry.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &Provider{
		requestCounter: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "nusavarta",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}),
		authOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nusavarta",
			Name:      "auth_operations_total",
			Help:      "Auth and profile operations by name and outcome",
		}, []string{"operation", "outcome"}),
		faultsReported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "nusavarta",
			Name:      "faults_reported_total",
			Help:      "Faults forwarded to the diagnostics sink",
		}),
	}, nil
}

// RequestCounter exposes the HTTP request metric.
func (p *Provider) RequestCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.requestCounter
}

// RecordOperation counts one auth/profile operation outcome.
func (p *Provider) RecordOperation(operation string, success bool) {
	if p == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	p.authOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordFault counts one forwarded fault.
func (p *Provider) RecordFault() {
	if p == nil {
		return
	}
	p.faultsReported.Inc()
}
