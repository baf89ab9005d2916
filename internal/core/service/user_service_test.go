package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/core/domain"
)

type stubPresence struct {
	users []string
	err   error
}

func (p *stubPresence) OnlineUsers(context.Context) ([]string, error) {
	return p.users, p.err
}

func newTestUserService(repo *stubUserRepo, presence Presence) *UserService {
	if presence == nil {
		presence = &stubPresence{}
	}
	return NewUserService(repo, presence, "test-secret", time.Hour, zerolog.Nop())
}

func TestSignupLogin_Roundtrip(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, nil)

	created, token, err := svc.Signup(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Username != "alice" {
		t.Fatalf("unexpected username %q", created.Username)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == "hunter2" {
		t.Fatalf("password stored in clear")
	}

	logged, token, err := svc.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.Username != "alice" {
		t.Fatalf("unexpected username %q", logged.Username)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["username"] != "alice" {
		t.Fatalf("expected username claim alice, got %v", claims["username"])
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc := newTestUserService(newStubUserRepo("alice"), nil)

	_, _, err := svc.Signup(context.Background(), "alice", "pw")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, nil)

	if _, _, err := svc.Signup(context.Background(), "alice", "right"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestUserService(newStubUserRepo(), nil)

	_, _, err := svc.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, nil)

	if _, _, err := svc.Signup(context.Background(), "alice", "old"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.ResetPassword(context.Background(), "alice", "new"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "alice", "old"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must be rejected, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice", "new"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateBiography(t *testing.T) {
	repo := newStubUserRepo("alice")
	svc := newTestUserService(repo, nil)

	user, err := svc.UpdateBiography(context.Background(), "alice", "hello there")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.Biography != "hello there" {
		t.Fatalf("biography not applied, got %q", user.Biography)
	}
}

func TestGetUser_OmitsPasswordHash(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, nil)

	if _, _, err := svc.Signup(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	user, err := svc.GetUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Username != "alice" || user.ID == "" {
		t.Fatalf("unexpected projection %+v", user)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newStubUserRepo("alice")
	svc := newTestUserService(repo, nil)

	if err := svc.DeleteUser(context.Background(), "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestOnlineUsers_PresenceFailureDegradesToEmpty(t *testing.T) {
	svc := newTestUserService(newStubUserRepo(), &stubPresence{err: errors.New("redis down")})

	users, err := svc.OnlineUsers(context.Background())
	if err != nil {
		t.Fatalf("presence failure must not surface, got %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty list, got %v", users)
	}
}
