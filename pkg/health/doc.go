// Package health runs named dependency checks and exposes them as HTTP probes.
//
// The preview server mounts both handlers:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"config":    configCheck,
//		"templates": templatesCheck,
//	}))
//
// Responses are plain text ("healthy" or "unhealthy") unless the client asks
// for JSON with ?format=json or an Accept: application/json header.
package health
