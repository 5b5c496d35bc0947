// Package health aggregates dependency checks for the /health endpoint.
package health

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentStore          = "store"
	ComponentPromptProvider = "prompt_provider"
	ComponentPhotoStorage   = "photo_storage"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedChecker struct {
	name string
	c    Checker
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	optional []namedChecker
	logger   *zap.Logger
}

// New creates a Service.
func New(db DBPinger, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// WithCheck registers an optional component. A nil checker is ignored.
func (s *Service) WithCheck(name string, c Checker) *Service {
	if c != nil {
		s.optional = append(s.optional, namedChecker{name: name, c: c})
		sort.Slice(s.optional, func(i, j int) bool { return s.optional[i].name < s.optional[j].name })
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.optional)+1)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.String("component", ComponentStore), zap.Error(err))
		checks[ComponentStore] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentStore] = CheckOK
	}

	for _, nc := range s.optional {
		if err := nc.c.HealthCheck(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("component", nc.name), zap.Error(err))
			checks[nc.name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[nc.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
