package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/chatdiary/chatdiary-go/internal/model"
	"github.com/chatdiary/chatdiary-go/internal/repository"
)

func newTestAuthService(t *testing.T) (*AuthService, *sql.DB) {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewAuthService(repository.NewUserRepository(db), "test-secret", time.Hour)
	return svc, db
}

func TestRegister_EmptyUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "",
		Password: "password123",
	})

	if !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("expected ErrUsernameRequired, got %v", err)
	}
}

func TestRegister_EmptyPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Password: "",
	})

	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Password: "pw1",
	})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if registered.Token == "" {
		t.Error("Register() should return a token")
	}
	if registered.User.Username != "alice" {
		t.Errorf("registered username = %q", registered.User.Username)
	}

	loggedIn, err := svc.Login(context.Background(), model.LoginRequest{
		Username: "alice",
		Password: "pw1",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login user ID = %d, want %d", loggedIn.User.ID, registered.User.ID)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("first Register() unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), model.RegisterRequest{Username: "alice", Password: "different"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "nobody", Password: "pw1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
