package matchcraft

import (
	"context"
	"errors"
	"time"

	healthuc "github.com/kailas-cloud/matchcraft/internal/usecase/health"
)

var errUnhealthy = errors.New("unhealthy")

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}

// OK reports whether every component passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the store the client is connected to.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}

	var err error
	if !status.OK() {
		err = errUnhealthy
	}
	c.obs.observe("health", start, err)
	return status
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
