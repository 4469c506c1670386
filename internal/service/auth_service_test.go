package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/domain"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Register(ctx, RegisterInput{Name: "Grace", Email: " Grace@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.NotEmpty(t, res.Token)

	claims, err := h.auth.TokenManager().ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.SubjectID())

	login, err := h.auth.Login(ctx, "grace@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = h.auth.Login(ctx, "grace@example.com", "wrong-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = h.auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "short"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "long-enough"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestLogin_BannedUserIsForbiddenUntilDue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, err := h.auth.Register(ctx, RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	_, err = h.users.BanUser(ctx, h.admin.ID, res.User.ID, "abuse", time.Hour)
	require.NoError(t, err)

	_, err = h.auth.Login(ctx, "eve@example.com", "s3cret-pass")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "abuse", domainErr.Details["reason"])
	assert.NotEmpty(t, domainErr.Details["scheduledUnbanAt"])

	h.clock.Advance(2 * time.Hour)
	_, err = h.auth.Login(ctx, "eve@example.com", "s3cret-pass")
	assert.NoError(t, err)
}
