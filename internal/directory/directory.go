// Package directory resolves users for the room service.
package directory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail is returned when an email is not well formed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName is returned when a display name is empty or too long.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPassword is returned when a password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// User is a directory entry. PasswordHash never leaves the directory in JSON.
type User struct {
	ID           int64     `json:"id" mapstructure:"id"`
	Email        string    `json:"email" mapstructure:"email"`
	Name         string    `json:"name" mapstructure:"name"`
	PasswordHash string    `json:"-" mapstructure:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" mapstructure:"createdAt"`
}

// UserDirectory looks users up by id or email.
type UserDirectory interface {
	// GetUserByID returns the user or ErrUserNotFound.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail returns the user or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
