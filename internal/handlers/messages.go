package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/chat"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/middleware"
)

// ChatService is the slice of the chat service the message handler needs.
type ChatService interface {
	SendMessage(ctx context.Context, sender *domain.User, receiverID string, in chat.SendMessageInput) (*domain.Message, error)
	ListConversation(ctx context.Context, callerID, otherID string) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, caller *domain.User, messageID string) error
	SidebarUsers(ctx context.Context, callerID string) ([]domain.User, error)
}

// MessageHandler serves the messaging REST API.
type MessageHandler struct {
	service ChatService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(service ChatService) *MessageHandler {
	return &MessageHandler{service: service}
}

// SidebarUsers returns every user except the caller.
func (h *MessageHandler) SidebarUsers(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	users, err := h.service.SidebarUsers(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// GetConversation returns the chronological history between the caller and
// the user in the :id path parameter.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	messages, err := h.service.ListConversation(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage sends a message to the user in the :id path parameter. The
// response carries the persisted message; the sender's client appends it
// optimistically while the receiver gets it as a push.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	var in chat.SendMessageInput
	if err := c.Bind(&in); err != nil {
		return writeError(c, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
	}

	msg, err := h.service.SendMessage(c.Request().Context(), user, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// DeleteMessage deletes the caller's own message.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}

	if err := h.service.DeleteMessage(c.Request().Context(), user, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Message deleted successfully"})
}
