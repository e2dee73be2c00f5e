package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/prabodhahdev/login-signup/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	requestCounter prometheus.Counter
	loginFailures  prometheus.Counter
	accountLocks   prometheus.Counter
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &Provider{
		requestCounter: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}),
		loginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "login_failures_total",
			Help:      "Total number of rejected login attempts",
		}),
		accountLocks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "account_locks_total",
			Help:      "Total number of lockout transitions",
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

// LoginFailureCounter exposes the failed-login metric.
func (p *Provider) LoginFailureCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.loginFailures
}

// AccountLockCounter exposes the lockout transition metric.
func (p *Provider) AccountLockCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.accountLocks
}
