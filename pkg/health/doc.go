/*
Package health provides reusable health check probes: HTTP, TCP, and
local exec checks, each implementing the Checker interface.

Status tracks consecutive successes/failures against a Config (retry
threshold, check interval, start-period grace window). It clears
Healthy only after Retries consecutive failures, so a single flaky
probe doesn't flap a dependency's status; one success sets it again.

# Usage

	checker := health.NewHTTPChecker("http://fcdbd:8080/ready")
	status := health.NewStatus()
	config := health.DefaultConfig()

	result := checker.Check(ctx)
	status.Update(result, config)
	if !status.Healthy {
		// dependency considered down
	}

pkg/metrics's RegisterComponent/GetReadiness track the aggregate
readiness fcdbd exposes over HTTP; this package supplies the probes
that feed those calls, not the aggregation itself.
*/
package health
