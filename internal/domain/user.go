package domain

import (
	"context"
	"time"
)

// User represents the core user model in the application domain.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID         string    `json:"id,omitempty"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	ProfilePic string    `json:"profilePic,omitempty"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// FindByID returns the user with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user with the given email, or nil when no
	// such user exists.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a new user. It returns ErrEmailExists when the email
	// is already taken.
	Create(ctx context.Context, user *User) (*User, error)

	// ListOthers returns every user except the one identified by callerID,
	// used to build the conversation sidebar.
	ListOthers(ctx context.Context, callerID string) ([]User, error)

	// UpdateProfilePic replaces the stored profile picture URL.
	UpdateProfilePic(ctx context.Context, id, url string) (*User, error)

	// Delete removes a user. It returns ErrNotFound when the user is absent.
	Delete(ctx context.Context, id string) error
}
