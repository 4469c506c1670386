package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies map[string]Pinger
}

// NewHealthHandler returns a new handler instance. Nil dependencies are
// skipped, so an in-memory run reports ready with no checks.
func NewHealthHandler(serviceName, version string, dependencies map[string]Pinger) *HealthHandler {
	deps := make(map[string]Pinger, len(dependencies))
	for name, dep := range dependencies {
		if dep != nil {
			deps[name] = dep
		}
	}
	return &HealthHandler{serviceName: serviceName, version: version, dependencies: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every dependency concurrently and answers 503 if any fails.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	type check struct {
		name    string
		err     error
		latency time.Duration
	}
	results := make(chan check, len(h.dependencies))
	for name, dep := range h.dependencies {
		go func(name string, dep Pinger) {
			start := time.Now()
			err := dep.Ping(ctx)
			results <- check{name: name, err: err, latency: time.Since(start)}
		}(name, dep)
	}

	checks := make(fiber.Map, len(h.dependencies))
	ready := true
	for range h.dependencies {
		res := <-results
		entry := fiber.Map{"status": "ok", "latencyMs": res.latency.Milliseconds()}
		if res.err != nil {
			entry["status"] = "down"
			entry["error"] = res.err.Error()
			ready = false
		}
		checks[res.name] = entry
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": checks,
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"service":      h.serviceName,
		"version":      h.version,
		"dependencies": checks,
	})
}
