package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

// CollectionUsers is the record-store collection holding directory entries.
const CollectionUsers = "users"

var validate = validator.New()

type newUser struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required,max=64"`
	Password string `validate:"required,min=6"`
}

// RecordDirectory keeps users in a record store.
type RecordDirectory struct {
	records store.RecordStore
	now     func() time.Time
}

// NewRecordDirectory creates a directory over the users collection of records.
func NewRecordDirectory(records store.RecordStore) *RecordDirectory {
	return &RecordDirectory{records: records, now: time.Now}
}

// GetUserByID retrieves a user by id.
func (d *RecordDirectory) GetUserByID(ctx context.Context, id int64) (*User, error) {
	rec, err := d.records.Get(ctx, CollectionUsers, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return decodeUser(rec)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (d *RecordDirectory) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	recs, err := d.records.List(ctx, CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	rec, ok := lo.Find(recs, func(r store.Record) bool {
		stored, _ := r["email"].(string)
		return normalizeEmail(stored) == email
	})
	if !ok {
		return nil, ErrUserNotFound
	}
	return decodeUser(rec)
}

// CreateUser registers a user with a bcrypt-hashed password.
func (d *RecordDirectory) CreateUser(ctx context.Context, email, name, password string) (*User, error) {
	req := newUser{
		Email:    normalizeEmail(email),
		Name:     strings.TrimSpace(name),
		Password: password,
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Email":
				return nil, ErrInvalidEmail
			case "Name":
				return nil, ErrInvalidName
			case "Password":
				return nil, ErrInvalidPassword
			}
		}
		return nil, fmt.Errorf("validate user: %w", err)
	}

	if _, err := d.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	rec, err := d.records.Add(ctx, CollectionUsers, store.Record{
		"email":        req.Email,
		"name":         req.Name,
		"passwordHash": hash,
		"createdAt":    store.FormatTime(d.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return decodeUser(rec)
}

func decodeUser(rec store.Record) (*User, error) {
	var u User
	if err := store.Decode(rec, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
