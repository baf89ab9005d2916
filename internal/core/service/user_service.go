package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

// Presence abstracts the online-presence store (Redis).
type Presence interface {
	OnlineUsers(ctx context.Context) ([]string, error)
}

// UserService implements account management and session token issuance.
type UserService struct {
	repo      ports.UserRepository
	presence  Presence
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, presence Presence, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{repo: repo, presence: presence, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Signup creates an account with a bcrypt-hashed password and returns the
// safe projection plus a session token.
func (s *UserService) Signup(ctx context.Context, username, password string) (*domain.SafeUser, string, error) {
	if username == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		DateJoined:   time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("username", username).Msg("user signed up")
	safe := created.Safe()
	return &safe, token, nil
}

// Login verifies credentials and returns the safe projection plus a token.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.SafeUser, string, error) {
	if username == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	safe := user.Safe()
	return &safe, token, nil
}

// ResetPassword replaces the stored hash (field-level update).
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) (*domain.SafeUser, error) {
	if newPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpdatePasswordHash(ctx, username, string(hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Msg("password reset")
	safe := user.Safe()
	return &safe, nil
}

// UpdateBiography replaces the biography (field-level update).
func (s *UserService) UpdateBiography(ctx context.Context, username, biography string) (*domain.SafeUser, error) {
	user, err := s.repo.UpdateBiography(ctx, username, biography)
	if err != nil {
		return nil, err
	}
	safe := user.Safe()
	return &safe, nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (*domain.SafeUser, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	safe := user.Safe()
	return &safe, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.SafeUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	safe := make([]*domain.SafeUser, 0, len(users))
	for _, u := range users {
		su := u.Safe()
		safe = append(safe, &su)
	}
	return safe, nil
}

func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Msg("user deleted")
	return nil
}

// OnlineUsers lists usernames with a live realtime connection. A presence
// store failure degrades to an empty list rather than failing the request.
func (s *UserService) OnlineUsers(ctx context.Context) ([]string, error) {
	users, err := s.presence.OnlineUsers(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("presence lookup failed")
		return []string{}, nil
	}
	return users, nil
}

func (s *UserService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
