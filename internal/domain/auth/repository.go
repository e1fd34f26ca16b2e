package auth

import (
	"context"

	"tradelink/internal/core/id"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id id.ID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update modifies an existing user (with optimistic locking)
	Update(ctx context.Context, user *User) error

	// List retrieves all users
	List(ctx context.Context) ([]*User, error)
}
