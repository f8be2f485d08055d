package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByPhone finds a user by normalized phone number
	FindByPhone(ctx context.Context, phone string) (*User, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// B2BApplicationRepository defines persistence for B2B applications
type B2BApplicationRepository interface {
	Create(ctx context.Context, app *B2BApplication) error
	Update(ctx context.Context, app *B2BApplication) error

	// FindByUserID returns ErrApplicationNotFound when the user never applied
	FindByUserID(ctx context.Context, userID uuid.UUID) (*B2BApplication, error)

	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
