package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nholden/beacon/internal/domain"
)

// Deliverer performs best-effort real-time delivery of a persisted message.
// Implemented by delivery.Router; faked in tests.
type Deliverer interface {
	Deliver(ctx context.Context, msg *domain.Message)
}

// SendMessageInput is the payload for sending a message. Image carries a
// base64 data URI, matching what clients submit.
type SendMessageInput struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Service implements the messaging operations: send, history, delete and
// the sidebar listing. Persistence always happens before delivery; push
// failures never surface to the sender.
type Service struct {
	users    domain.UserRepository
	messages domain.MessageRepository
	media    domain.MediaStore
	router   Deliverer
	logger   *slog.Logger
}

// NewService wires a chat service from its collaborators.
func NewService(users domain.UserRepository, messages domain.MessageRepository, media domain.MediaStore, router Deliverer) *Service {
	return &Service{
		users:    users,
		messages: messages,
		media:    media,
		router:   router,
		logger:   slog.Default().With("component", "chat_service"),
	}
}

// SendMessage validates, persists and best-effort-delivers a new message
// from sender to the user identified by receiverID.
//
// Validation happens before any write: a message must carry text, an image,
// or both. When an image was uploaded but the insert fails, the uploaded
// object is deleted again so no orphaned media accumulates.
func (s *Service) SendMessage(ctx context.Context, sender *domain.User, receiverID string, in SendMessageInput) (*domain.Message, error) {
	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("looking up receiver: %w", err)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && in.Image == "" {
		return nil, fmt.Errorf("%w: message requires text or an image", domain.ErrValidation)
	}

	var imageURL string
	if in.Image != "" {
		url, err := s.media.Upload(ctx, in.Image)
		if err != nil {
			return nil, fmt.Errorf("uploading image: %w", err)
		}
		imageURL = url
	}

	msg, err := s.messages.Insert(ctx, &domain.Message{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
	})
	if err != nil {
		if imageURL != "" {
			if delErr := s.media.Delete(ctx, imageURL); delErr != nil {
				s.logger.Warn("Failed to clean up media after insert failure",
					"url", imageURL, "error", delErr)
			}
		}
		return nil, fmt.Errorf("persisting message: %w", err)
	}

	// Persist-then-push, synchronously, so a single conversation is pushed
	// in send order. Delivery is fire-and-forget.
	s.router.Deliver(ctx, msg)

	return msg, nil
}

// ListConversation returns the full history between the caller and another
// user, oldest first.
func (s *Service) ListConversation(ctx context.Context, callerID, otherID string) ([]domain.Message, error) {
	return s.messages.ListConversation(ctx, callerID, otherID)
}

// DeleteMessage removes a message. Only the sender may delete their own
// message; admins may delete any message.
func (s *Service) DeleteMessage(ctx context.Context, caller *domain.User, messageID string) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}

	if msg.SenderID != caller.ID && !caller.IsAdmin {
		return fmt.Errorf("%w: only the sender may delete this message", domain.ErrNotAuthorized)
	}

	return s.messages.Delete(ctx, messageID)
}

// SidebarUsers lists every user except the caller, for the conversation
// sidebar.
func (s *Service) SidebarUsers(ctx context.Context, callerID string) ([]domain.User, error) {
	return s.users.ListOthers(ctx, callerID)
}
