// Package fake provides an in-memory user store for tests.
// It mirrors the repository's semantics: unique username/email and
// not-found for malformed IDs.
package fake

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musicagent/musicagent/internal/model"
	"github.com/musicagent/musicagent/internal/repository"
)

// UserStore is an in-memory implementation of the user persistence API.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*model.User

	// Err forces every operation to fail with the given error.
	Err error
}

// NewUserStore creates an empty in-memory store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

// CreateUser stores a new user and assigns ID and timestamps.
func (f *UserStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	f.users[user.ID.Hex()] = &clone
	return nil
}

// ListUsers returns up to limit stored users.
func (f *UserStore) ListUsers(ctx context.Context, limit int64) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	users := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		if int64(len(users)) >= limit {
			break
		}
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

// GetUserByID returns a user by document ID.
func (f *UserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrUserNotFound
	}

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// GetUserByUsername returns a user by username.
func (f *UserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// GetUserByEmail returns a user by email.
func (f *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// UpdateUser applies a partial update and returns the updated user.
func (f *UserStore) UpdateUser(ctx context.Context, id string, set bson.M) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	for field, value := range set {
		s, _ := value.(string)
		switch field {
		case "username":
			for otherID, other := range f.users {
				if otherID != id && other.Username == s {
					return nil, repository.ErrDuplicateUser
				}
			}
			u.Username = s
		case "email":
			for otherID, other := range f.users {
				if otherID != id && other.Email == s {
					return nil, repository.ErrDuplicateUser
				}
			}
			u.Email = s
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		case "hashed_password":
			u.HashedPassword = s
		}
	}
	u.UpdatedAt = time.Now().UTC()

	clone := *u
	return &clone, nil
}

// DeleteUser removes a user by ID.
func (f *UserStore) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// Len reports the number of stored users.
func (f *UserStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}
