package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// Actor identifies who is calling a service operation.
type Actor struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// Clock returns the current time.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// storeError maps a repository failure onto the error taxonomy.
func storeError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", details)
	default:
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return apperrors.NewInternalError(err)
	}
}

// requireFields returns a validation error naming every blank field.
func requireFields(fields map[string]string, order ...string) error {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func ptr[T any](v T) *T {
	return &v
}
