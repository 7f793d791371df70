package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/middleware"
)

// AdminHandler serves the admin moderation endpoints. Routes using it are
// guarded by middleware.RequireAdmin.
type AdminHandler struct {
	users domain.UserRepository
	media domain.MediaStore
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users domain.UserRepository, media domain.MediaStore) *AdminHandler {
	return &AdminHandler{users: users, media: media}
}

// GetUser returns any user's profile by ID.
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user account. Admins cannot delete their own account
// through this endpoint.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	id := c.Param("id")
	if caller.ID == id {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cannot delete own admin account"})
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted by admin"})
}

type updateUserPicRequest struct {
	ProfilePic string `json:"profilePic"`
}

// UpdateUserPic stores a new profile picture (base64 data URI) for any user
// and updates their record with its URL.
func (h *AdminHandler) UpdateUserPic(c echo.Context) error {
	var req updateUserPicRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
	}
	if req.ProfilePic == "" {
		return writeError(c, fmt.Errorf("%w: no picture provided", domain.ErrValidation))
	}

	url, err := h.media.Upload(c.Request().Context(), req.ProfilePic)
	if err != nil {
		return writeError(c, err)
	}

	updated, err := h.users.UpdateProfilePic(c.Request().Context(), c.Param("id"), url)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
