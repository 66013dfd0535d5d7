package directory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/wirechat-rooms/internal/store/memory"
)

func TestRecordDirectory_CreateAndLookup(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := NewRecordDirectory(memory.New())

	created, err := dir.CreateUser(ctx, " Test@Example.com ", " John ", "password123")
	req.NoError(err)
	req.Equal(int64(1), created.ID)
	req.Equal("test@example.com", created.Email)
	req.Equal("John", created.Name)
	req.NotEqual("password123", created.PasswordHash)
	req.NoError(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
	req.Error(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password124")))

	byID, err := dir.GetUserByID(ctx, created.ID)
	req.NoError(err)
	req.Equal(created.Email, byID.Email)

	byEmail, err := dir.GetUserByEmail(ctx, "TEST@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
}

func TestRecordDirectory_NotFound(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := NewRecordDirectory(memory.New())

	_, err := dir.GetUserByID(ctx, 42)
	req.ErrorIs(err, ErrUserNotFound)

	_, err = dir.GetUserByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, ErrUserNotFound)

	_, err = dir.GetUserByEmail(ctx, "   ")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestRecordDirectory_CreateUserValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		wantErr  error
	}{
		{name: "bad email", email: "not-an-email", userName: "John", password: "password123", wantErr: ErrInvalidEmail},
		{name: "empty name", email: "john@example.com", userName: "  ", password: "password123", wantErr: ErrInvalidName},
		{name: "short password", email: "john@example.com", userName: "John", password: "12345", wantErr: ErrInvalidPassword},
		{name: "password past bcrypt limit", email: "john@example.com", userName: "John", password: strings.Repeat("p", 73), wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := NewRecordDirectory(memory.New())
			_, err := dir.CreateUser(ctx, tt.email, tt.userName, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordDirectory_RejectsDuplicateEmail(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := NewRecordDirectory(memory.New())

	_, err := dir.CreateUser(ctx, "john@example.com", "John", "password123")
	req.NoError(err)

	_, err = dir.CreateUser(ctx, "JOHN@example.com", "Johnny", "password123")
	req.ErrorIs(err, ErrEmailTaken)
}
