package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/tabletop-tournaments/db/dbtest"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	"github.com/Dosada05/tabletop-tournaments/utils"
)

func newTestAuthService(t *testing.T) (AuthService, *utils.TokenManager) {
	t.Helper()
	conn := dbtest.Open(t)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(repositories.NewUserRepository(conn, repositories.DialectSQLite), tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.(*authService).hash = func(p string) (string, error) {
		return utils.HashPasswordWithCost(p, bcrypt.MinCost)
	}
	return svc, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	ctx := context.Background()
	name := dbtest.Username()

	registered, err := svc.Register(ctx, RegisterInput{Username: name, Email: name + "@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Role != models.RolePlayer {
		t.Fatalf("expected default role player, got %s", registered.User.Role)
	}
	if registered.User.PasswordHash != "" {
		t.Fatalf("expected password hash to be cleared")
	}

	loggedIn, err := svc.Login(ctx, LoginInput{Username: name, Password: "long-enough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := tokens.ParseJWT(loggedIn.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != registered.User.ID || claims.Username != name {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := svc.Login(ctx, LoginInput{Username: name, Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "long-enough"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: name, Password: "long-enough"}); !errors.Is(err, ErrUsernameConflict) {
		t.Fatalf("expected ErrUsernameConflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "shorty", Password: "1234567"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "boss", Password: "long-enough", Role: models.RoleAdmin}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for admin self-registration, got %v", err)
	}
	res, err := svc.Register(ctx, RegisterInput{Username: "to", Password: "long-enough", Role: models.RoleOrganizer})
	if err != nil {
		t.Fatalf("register organizer: %v", err)
	}
	if res.User.Role != models.RoleOrganizer {
		t.Fatalf("expected organizer, got %s", res.User.Role)
	}
}
