package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nholden/beacon/internal/domain"
)

// MessageStore encapsulates database operations for messages.
type MessageStore struct {
	db *surrealdb.DB
}

var _ domain.MessageRepository = (*MessageStore)(nil)

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *surrealdb.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Insert persists a new message. The creation timestamp is assigned by the
// database so conversation ordering is consistent.
func (s *MessageStore) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	query := `
		CREATE message CONTENT {
			senderId:   $senderId,
			receiverId: $receiverId,
			text:       $text,
			image:      $image,
			createdAt:  time::now()
		} RETURN AFTER
	`
	params := map[string]any{
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
		"text":       msg.Text,
		"image":      msg.Image,
	}

	created, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created")
	}
	return created, nil
}

// ListConversation returns every message between the two users in
// chronological order, regardless of direction.
func (s *MessageStore) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	query := `
		SELECT * FROM message
		WHERE (senderId = $a AND receiverId = $b)
		   OR (senderId = $b AND receiverId = $a)
		ORDER BY createdAt ASC
	`
	params := map[string]any{"a": userA, "b": userB}

	messages, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return messages, nil
}

// FindByID returns the message with the given record ID, or domain.ErrNotFound.
func (s *MessageStore) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	query := "SELECT * FROM type::record($id)"
	params := map[string]any{"id": id}

	msg, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if msg == nil {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

// Delete hard-deletes a message record.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return Execute(ctx, s.db, "DELETE type::record($id)", map[string]any{"id": id})
}
