package config

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NewCircuitBreaker creates a breaker for an outbound dependency. It opens
// after three consecutive failures and half-opens after the timeout.
func NewCircuitBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case "WhatsApp-Relay":
		timeout = 15 * time.Second
	case "RabbitMQ-Email":
		timeout = 30 * time.Second
	default:
		timeout = 20 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}
