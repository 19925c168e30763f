// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/musicagent/musicagent/internal/auth"
	"github.com/musicagent/musicagent/internal/metrics"
	"github.com/musicagent/musicagent/internal/model"
	"github.com/musicagent/musicagent/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidUsername = errors.New("invalid username format")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidName     = errors.New("invalid name")
	ErrWeakPassword    = errors.New("password does not meet minimum requirements")
	ErrNoUpdates       = errors.New("no fields to update")
)

// UserStore abstracts the persistence layer so the service can be tested
// with an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context, limit int64) ([]*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, set bson.M) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// CreateUser validates the input, hashes the password and stores a new
// user. Username and email must be unique.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(input.FirstName); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(input.LastName); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// Pre-check uniqueness for precise error reporting; the unique
	// indexes remain the authority under concurrent creates.
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          email,
		HashedPassword: hashed,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent create
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// ListUsers returns up to limit users.
func (s *UserService) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.store.ListUsers(ctx, int64(limit))
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput defines input for a partial user update.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	ID        string
	Username  *string
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// UpdateUser applies a partial update and returns the updated user.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	set := bson.M{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := ValidateUsername(username); err != nil {
			return nil, err
		}
		set["username"] = username
	}
	if input.FirstName != nil {
		if err := ValidateDisplayName(*input.FirstName); err != nil {
			return nil, err
		}
		set["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if err := ValidateDisplayName(*input.LastName); err != nil {
			return nil, err
		}
		set["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		set["email"] = email
	}
	if input.Password != nil {
		if err := ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hashed, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		set["hashed_password"] = hashed
	}

	if len(set) == 0 {
		return nil, ErrNoUpdates
	}

	user, err := s.store.UpdateUser(ctx, input.ID, set)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicateUser):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.metrics.IncUserUpdated()

	return user, nil
}

// DeleteUser removes a user by ID.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
