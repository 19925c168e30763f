package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musicagent/musicagent/internal/metrics"
	"github.com/musicagent/musicagent/internal/repository/fake"
)

func validInput() CreateUserInput {
	return CreateUserInput{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "longenoughpassword",
	}
}

func TestCreateUser(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)

	user, err := svc.CreateUser(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID.IsZero() {
		t.Error("expected an assigned ID")
	}
	if user.Username != "alice" {
		t.Errorf("expected username 'alice', got %s", user.Username)
	}
	if user.HashedPassword == "longenoughpassword" {
		t.Error("password must not be stored in plaintext")
	}
	if !strings.HasPrefix(user.HashedPassword, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %s", user.HashedPassword)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateUser_NormalizesEmail(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)

	input := validInput()
	input.Email = "  Alice@Example.COM "

	user, err := svc.CreateUser(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, validInput()); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	input := validInput()
	input.Email = "other@example.com"
	_, err := svc.CreateUser(ctx, input)
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, validInput()); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	input := validInput()
	input.Username = "bob"
	_, err := svc.CreateUser(ctx, input)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)

	tests := []struct {
		name    string
		mutate  func(*CreateUserInput)
		wantErr error
	}{
		{"bad_username", func(i *CreateUserInput) { i.Username = "a!" }, ErrInvalidUsername},
		{"bad_email", func(i *CreateUserInput) { i.Email = "not-an-email" }, ErrInvalidEmail},
		{"weak_password", func(i *CreateUserInput) { i.Password = "short" }, ErrWeakPassword},
		{"long_first_name", func(i *CreateUserInput) { i.FirstName = strings.Repeat("a", 101) }, ErrInvalidName},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := validInput()
			test.mutate(&input)
			_, err := svc.CreateUser(context.Background(), input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCreateThenList_RoundTrip(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err := svc.ListUsers(ctx, 100)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}

	found := false
	for _, u := range users {
		if u.ID == created.ID && u.Username == "alice" && u.Email == "alice@example.com" {
			found = true
		}
	}
	if !found {
		t.Error("created user not present in listing")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)

	_, err := svc.GetUser(context.Background(), primitive.NewObjectID().Hex())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	_, err = svc.GetUser(context.Background(), "not-a-hex-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for malformed ID, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := "Alicia"
	email := "alicia@example.com"
	updated, err := svc.UpdateUser(ctx, UpdateUserInput{
		ID:        created.ID.Hex(),
		FirstName: &first,
		Email:     &email,
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.FirstName != "Alicia" {
		t.Errorf("expected first name updated, got %s", updated.FirstName)
	}
	if updated.Email != "alicia@example.com" {
		t.Errorf("expected email updated, got %s", updated.Email)
	}
	if updated.Username != "alice" {
		t.Errorf("username should be unchanged, got %s", updated.Username)
	}
}

func TestUpdateUser_NoFields(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err = svc.UpdateUser(ctx, UpdateUserInput{ID: created.ID.Hex()})
	if !errors.Is(err, ErrNoUpdates) {
		t.Fatalf("expected ErrNoUpdates, got %v", err)
	}
}

func TestUpdateUser_TakenUsername(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, validInput()); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	other := validInput()
	other.Username = "bob"
	other.Email = "bob@example.com"
	bob, err := svc.CreateUser(ctx, other)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	taken := "alice"
	_, err = svc.UpdateUser(ctx, UpdateUserInput{ID: bob.ID.Hex(), Username: &taken})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	svc := NewUserService(fake.NewUserStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	password := "anotherlongpassword"
	updated, err := svc.UpdateUser(ctx, UpdateUserInput{
		ID:       created.ID.Hex(),
		Password: &password,
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.HashedPassword == created.HashedPassword {
		t.Error("expected password hash to change")
	}
	if !strings.HasPrefix(updated.HashedPassword, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %s", updated.HashedPassword)
	}
}

func TestDeleteUser(t *testing.T) {
	store := fake.NewUserStore()
	recorder := metrics.NewInMemory()
	svc := NewUserService(store, recorder)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := svc.DeleteUser(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store after delete, got %d users", store.Len())
	}

	if err := svc.DeleteUser(ctx, created.ID.Hex()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	snap := recorder.Snapshot()
	if snap.UsersCreated != 1 || snap.UsersDeleted != 1 {
		t.Errorf("unexpected counters: created=%d deleted=%d", snap.UsersCreated, snap.UsersDeleted)
	}
}
