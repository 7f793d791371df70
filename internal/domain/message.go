package domain

import (
	"context"
	"time"
)

// Message represents a single direct message between two users. A message
// carries text, an image URL, or both; it is immutable once created except
// for hard deletion.
type Message struct {
	ID         string    `json:"id,omitempty"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageRepository defines the contract for message persistence.
type MessageRepository interface {
	// Insert persists a new message and returns it with the store-assigned
	// ID and creation timestamp.
	Insert(ctx context.Context, msg *Message) (*Message, error)

	// ListConversation returns every message exchanged between the two
	// users, ordered by creation time ascending.
	ListConversation(ctx context.Context, userA, userB string) ([]Message, error)

	// FindByID returns the message with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Message, error)

	// Delete hard-deletes a message. It returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// MediaStore is the narrow interface the chat service uses to persist
// uploaded images. The returned reference is treated as an opaque URL
// stored on the Message.
type MediaStore interface {
	// Upload stores the image carried in a base64 data URI and returns its
	// public URL.
	Upload(ctx context.Context, dataURI string) (string, error)

	// Delete removes a previously uploaded object. Best effort: used to
	// compensate when a message insert fails after its image was uploaded.
	Delete(ctx context.Context, url string) error
}
