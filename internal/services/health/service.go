// Package health reports whether the process and its backing stores are reachable.
package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Checker pings one dependency.
type Checker func(ctx context.Context) error

// Service encapsulates health-related checks.
type Service struct {
	checks map[string]Checker
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Checker{}}
}

// Register adds a named check. A nil checker is ignored.
func (s *Service) Register(name string, check Checker) {
	if check != nil {
		s.checks[name] = check
	}
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check with a short timeout. OK is false if any fails.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if len(s.checks) == 0 {
		return report
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
