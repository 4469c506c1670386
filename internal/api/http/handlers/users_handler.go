package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/service"
)

// UsersHandler exposes auth and profile endpoints for end-users.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(res.User),
			"auth": authResponse(res),
		},
	})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(res.User),
			"auth": authResponse(res),
		},
	})
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(principal.User)})
}

// UpdateMe handles PATCH /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), principal.ID(), service.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func authResponse(res *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.Meta.ExpiresAt,
		ExpiresIn: int64(res.Meta.ExpiresIn(res.Meta.IssuedAt).Seconds()),
	}
}
