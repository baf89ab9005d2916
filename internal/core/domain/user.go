package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("User not found")
var ErrUserExists = errors.New("Username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models an account holder. The password hash never leaves the backend;
// every outward-facing path goes through Safe().
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"dateJoined"`
	Biography    string    `json:"biography,omitempty"`
}

// SafeUser is the password-stripped projection returned to clients.
type SafeUser struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	DateJoined time.Time `json:"dateJoined"`
	Biography  string    `json:"biography,omitempty"`
}

// UserRef is the minimal sender projection embedded in enriched messages.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:         u.ID,
		Username:   u.Username,
		DateJoined: u.DateJoined,
		Biography:  u.Biography,
	}
}

func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}
