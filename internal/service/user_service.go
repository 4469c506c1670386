package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// UnbanRecorder counts users released by the unban sweep.
type UnbanRecorder interface {
	RecordUnbans(n int)
}

// ProfileUpdate carries editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Address   *string
	AvatarURL *string
}

// UserService manages profiles, bans and account removal.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	recorder   UnbanRecorder
	logger     *zap.Logger
	clock      Clock
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Recorder   UnbanRecorder
	Logger     *zap.Logger
	Clock      Clock
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logger:     nopLogger(deps.Logger),
		clock:      deps.Clock,
	}
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": id})
	}
	return user, nil
}

// UpdateProfile applies profile edits. Snapshots on earlier adoption requests
// are not refreshed.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"fields": []string{"name"}})
		}
		user.Name = name
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Address != nil {
		user.Address = strings.TrimSpace(*update.Address)
	}
	if update.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", nil)
	}
	return user, nil
}

// ListUsers lists accounts for the admin console.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "users", nil)
	}
	return users, nil
}

// BanUser bans a user until now+duration. The unban time is stored on the
// user and picked up by the sweep, so it survives restarts. Banning an already
// banned user replaces the previous ban.
func (s *UserService) BanUser(ctx context.Context, adminID, userID, reason string, duration time.Duration) (*domain.User, error) {
	if duration <= 0 {
		return nil, apperrors.NewValidationError("ban duration must be positive", map[string]any{"fields": []string{"duration"}})
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, apperrors.NewForbidden("admins cannot be banned")
	}

	now := s.clock.now()
	unbanAt := now.Add(duration)
	ban := domain.BanState{
		IsBanned:         true,
		BannedBy:         ptr(adminID),
		Reason:           strings.TrimSpace(reason),
		BannedAt:         &now,
		ScheduledUnbanAt: &unbanAt,
	}
	if err := s.users.SetBan(ctx, userID, ban); err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": userID})
	}
	user.Ban = ban

	s.logger.Info("user banned", zap.String("user_id", userID), zap.String("admin_id", adminID), zap.Time("scheduled_unban_at", unbanAt))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserBanned, userID, &adminID, now, events.UserBannedPayload{
		UserID:           user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Phone:            user.Phone,
		Reason:           ban.Reason,
		ScheduledUnbanAt: unbanAt,
	}))
	return user, nil
}

// UnbanUser lifts a ban immediately. Unbanning a user who is not banned is a
// no-op.
func (s *UserService) UnbanUser(ctx context.Context, adminID, userID string) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Ban.IsBanned {
		return user, nil
	}
	if err := s.users.ClearBan(ctx, userID); err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": userID})
	}
	user.Ban = domain.BanState{}
	s.publishUnbanned(ctx, user, &adminID, false)
	return user, nil
}

// UnbanDue clears every ban whose scheduled unban time has passed and returns
// how many users were released. A ban renewed with a later time is kept.
func (s *UserService) UnbanDue(ctx context.Context) (int, error) {
	now := s.clock.now()
	due, err := s.users.ListDueUnbans(ctx, now)
	if err != nil {
		return 0, storeError(err, "users", nil)
	}

	released := 0
	for i := range due {
		user := due[i]
		cleared, err := s.users.ClearBanIfDue(ctx, user.ID, now)
		if err != nil {
			s.logger.Warn("scheduled unban failed", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if !cleared {
			continue
		}
		released++
		user.Ban = domain.BanState{}
		s.publishUnbanned(ctx, &user, nil, true)
	}
	if s.recorder != nil {
		s.recorder.RecordUnbans(released)
	}
	return released, nil
}

// DeleteUser removes the account along with its vendor, that vendor's pets,
// every adoption request touching them and the user's applications.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if actor.UserID == userID {
		return apperrors.NewForbidden("admins cannot delete their own account")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return storeError(err, "user", map[string]any{"userId": userID})
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("admin_id", actor.UserID))
	return nil
}

func (s *UserService) publishUnbanned(ctx context.Context, user *domain.User, actorID *string, scheduled bool) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserUnbanned, user.ID, actorID, s.clock.now(), events.UserUnbannedPayload{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Scheduled: scheduled,
	}))
}
