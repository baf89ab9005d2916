package ports

import (
	"context"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// UserService exposes account operations. All projections returned to
// callers are password-stripped.
type UserService interface {
	// Signup creates an account and returns it with a signed session token.
	Signup(ctx context.Context, username, password string) (*domain.SafeUser, string, error)
	Login(ctx context.Context, username, password string) (*domain.SafeUser, string, error)
	ResetPassword(ctx context.Context, username, newPassword string) (*domain.SafeUser, error)
	UpdateBiography(ctx context.Context, username, biography string) (*domain.SafeUser, error)
	GetUser(ctx context.Context, username string) (*domain.SafeUser, error)
	ListUsers(ctx context.Context) ([]*domain.SafeUser, error)
	DeleteUser(ctx context.Context, username string) error
	// OnlineUsers lists usernames with a live presence entry.
	OnlineUsers(ctx context.Context) ([]string, error)
}
