// Package health serves liveness and readiness probes.
//
// [LivenessHandler] always answers OK. [ReadinessHandler] runs a set of named
// [Checks] concurrently under a shared timeout:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"database": database.Healthcheck(manager),
//		"redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Plain text is returned by default ("OK" or "Service Unavailable"). Clients
// asking for application/json, or passing ?format=json, get the per-check
// [Response]:
//
//	{"status":"unhealthy","checks":{"database":{"status":"unhealthy","error":"...","elapsed":"1ms"}}}
//
// [Run] executes the checks without HTTP, e.g. for a CLI preflight.
package health
