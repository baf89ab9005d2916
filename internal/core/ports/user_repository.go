package ports

import (
	"context"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdatePasswordHash performs a field-level update and returns the
	// updated user.
	UpdatePasswordHash(ctx context.Context, username, hash string) (*domain.User, error)
	UpdateBiography(ctx context.Context, username, biography string) (*domain.User, error)
	Delete(ctx context.Context, username string) error
}
