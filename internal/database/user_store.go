package database

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nholden/beacon/internal/domain"
)

// userRecord is the database representation of a user. It exists so the
// password hash can round-trip to storage while domain.User never
// serializes it.
type userRecord struct {
	ID         string    `json:"id,omitempty"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Password   string    `json:"password,omitempty"`
	ProfilePic string    `json:"profilePic,omitempty"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:         r.ID,
		FullName:   r.FullName,
		Email:      r.Email,
		Password:   r.Password,
		ProfilePic: r.ProfilePic,
		IsAdmin:    r.IsAdmin,
		CreatedAt:  r.CreatedAt,
	}
}

// UserStore encapsulates database operations for users.
type UserStore struct {
	db *surrealdb.DB
}

var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore creates a new UserStore.
func NewUserStore(db *surrealdb.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByID returns the user with the given record ID, or domain.ErrNotFound.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := "SELECT * FROM type::record($id)"
	params := map[string]any{"id": id}

	record, err := QueryOne[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record.toDomain(), nil
}

// FindByEmail queries for a single user by their email address. It returns
// nil, nil when no user matches.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE email = $email"
	params := map[string]any{"email": email}

	record, err := QueryOne[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	return record.toDomain(), nil
}

// Create persists a new user. The caller supplies the already-hashed
// password on user.Password.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := s.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	query := `
		CREATE user CONTENT {
			fullName:   $fullName,
			email:      $email,
			password:   $password,
			profilePic: $profilePic,
			isAdmin:    $isAdmin,
			createdAt:  time::now()
		} RETURN AFTER
	`
	params := map[string]any{
		"fullName":   user.FullName,
		"email":      user.Email,
		"password":   user.Password,
		"profilePic": user.ProfilePic,
		"isAdmin":    user.IsAdmin,
	}

	created, err := QueryOne[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("user was not created")
	}
	return created.toDomain(), nil
}

// ListOthers returns every user except the caller, for the sidebar.
func (s *UserStore) ListOthers(ctx context.Context, callerID string) ([]domain.User, error) {
	query := "SELECT * FROM user WHERE id != type::record($caller) ORDER BY fullName ASC"
	params := map[string]any{"caller": callerID}

	records, err := Query[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	users := make([]domain.User, len(records))
	for i := range records {
		users[i] = *records[i].toDomain()
	}
	return users, nil
}

// UpdateProfilePic replaces a user's profile picture URL.
func (s *UserStore) UpdateProfilePic(ctx context.Context, id, url string) (*domain.User, error) {
	query := "UPDATE type::record($id) SET profilePic = $url RETURN AFTER"
	params := map[string]any{"id": id, "url": url}

	updated, err := QueryOne[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated.toDomain(), nil
}

// Delete removes a user record.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return Execute(ctx, s.db, "DELETE type::record($id)", map[string]any{"id": id})
}
