// Package health serves the liveness and readiness probes.
//
//	r.Get("/health/live", health.Live())
//	r.Get("/health/ready", health.Ready(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// Probes answer in plain text unless the client asks for JSON through the
// Accept header or ?format=json.
package health
