package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	bootstrapOutcomes *prometheus.CounterVec
	guardDecisions    *prometheus.CounterVec
	loginAttempts     *prometheus.CounterVec
	impersonations    *prometheus.CounterVec
	liveTabs          prometheus.Gauge
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	bootstrapOutcomes := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Name:      "session_bootstrap_total",
		Help:      "Session bootstrap runs partitioned by outcome classification",
	}, []string{"outcome"})

	guardDecisions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions partitioned by action",
	}, []string{"action"})

	loginAttempts := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by result",
	}, []string{"result"})

	impersonations := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Name:      "impersonation_flows_total",
		Help:      "Impersonation enter/exit flows partitioned by phase and result",
	}, []string{"phase", "result"})

	liveTabs := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "console",
		Name:      "live_tabs",
		Help:      "Number of tab sessions currently registered",
	})

	return &Provider{
		bootstrapOutcomes: bootstrapOutcomes,
		guardDecisions:    guardDecisions,
		loginAttempts:     loginAttempts,
		impersonations:    impersonations,
		liveTabs:          liveTabs,
	}, nil
}

// ObserveBootstrap records one bootstrap run with its outcome.
func (p *Provider) ObserveBootstrap(outcome string) {
	if p == nil {
		return
	}
	p.bootstrapOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveGuardDecision records one route guard decision.
func (p *Provider) ObserveGuardDecision(action string) {
	if p == nil {
		return
	}
	p.guardDecisions.WithLabelValues(action).Inc()
}

// ObserveLogin records a login attempt result ("success" or "failure").
func (p *Provider) ObserveLogin(result string) {
	if p == nil {
		return
	}
	p.loginAttempts.WithLabelValues(result).Inc()
}

// ObserveImpersonation records one impersonation flow phase.
func (p *Provider) ObserveImpersonation(phase, result string) {
	if p == nil {
		return
	}
	p.impersonations.WithLabelValues(phase, result).Inc()
}

// SetLiveTabs updates the live tab gauge.
func (p *Provider) SetLiveTabs(count int) {
	if p == nil {
		return
	}
	p.liveTabs.Set(float64(count))
}
