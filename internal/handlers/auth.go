package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/auth"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/middleware"
)

// AuthHandler serves signup, login, logout, session check and profile
// updates.
type AuthHandler struct {
	users    domain.UserRepository
	media    domain.MediaStore
	tokens   *auth.TokenManager
	validate *validator.Validate
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users domain.UserRepository, media domain.MediaStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		media:    media,
		tokens:   tokens,
		validate: validator.New(),
	}
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Signup registers a new account and issues a session cookie.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Create(c.Request().Context(), &domain.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		return writeError(c, err)
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return writeError(c, err)
	}
	c.SetCookie(h.tokens.Cookie(token))

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing account and issues a session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
	}

	user, err := h.users.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	if user == nil || !auth.ComparePassword(req.Password, user.Password) {
		return writeError(c, domain.ErrInvalidCredentials)
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return writeError(c, err)
	}
	c.SetCookie(h.tokens.Cookie(token))

	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.tokens.ClearCookie())
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Check returns the currently authenticated user.
func (h *AuthHandler) Check(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}
	return c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic" validate:"required"`
}

// UpdateProfile stores a new profile picture (base64 data URI) and updates
// the user record with its URL.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, fmt.Errorf("%w: profilePic is required", domain.ErrValidation))
	}

	url, err := h.media.Upload(c.Request().Context(), req.ProfilePic)
	if err != nil {
		return writeError(c, err)
	}

	updated, err := h.users.UpdateProfilePic(c.Request().Context(), user.ID, url)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}
