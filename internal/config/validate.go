package config

import (
	"errors"
	"strings"
)

// NormalizeAndValidate fills defaults for anything unset and rejects values
// that would make a crawl misbehave (an unbounded fan-out, a zero timeout).
func NormalizeAndValidate(cfg Config) (Config, error) {
	out := cfg
	var errs []string

	if strings.TrimSpace(out.App.DataDir) == "" {
		out.App.DataDir = "."
	}
	if strings.TrimSpace(out.App.DBFile) == "" {
		out.App.DBFile = "jobradar.db"
	}
	if strings.TrimSpace(out.Crawl.Schedule) == "" {
		out.Crawl.Schedule = "@every 6h"
	}

	if out.Crawl.EmployerConcurrency <= 0 {
		out.Crawl.EmployerConcurrency = 4
	}
	if out.Crawl.PageConcurrency <= 0 {
		out.Crawl.PageConcurrency = 20
	}
	if out.Crawl.PageConcurrency > 30 {
		// past ~20-30 parallel pages per employer error rates climb faster
		// than throughput
		errs = append(errs, "crawl.page_concurrency must be <= 30")
	}
	if out.Crawl.EmployerTimeoutSeconds <= 0 {
		out.Crawl.EmployerTimeoutSeconds = 300
	}
	if out.Crawl.HTTPTimeoutSeconds <= 0 {
		out.Crawl.HTTPTimeoutSeconds = 20
	}
	if out.Crawl.RetryAttempts <= 0 {
		out.Crawl.RetryAttempts = 3
	}
	if out.Crawl.RetryAttempts > 10 {
		errs = append(errs, "crawl.retry_attempts must be <= 10")
	}
	if out.Crawl.RetryBackoffMillis <= 0 {
		out.Crawl.RetryBackoffMillis = 500
	}
	if out.Crawl.HostRatePerSec <= 0 {
		out.Crawl.HostRatePerSec = 4
	}
	if out.Crawl.HostBurst <= 0 {
		out.Crawl.HostBurst = 8
	}

	if strings.TrimSpace(out.EmployersFile) == "" {
		out.EmployersFile = "employers.yml"
	}

	if len(errs) > 0 {
		return out, errors.New(strings.Join(errs, "; "))
	}
	return out, nil
}
