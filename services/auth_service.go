package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	"github.com/Dosada05/tabletop-tournaments/utils"
)

const minPasswordLength = 8

type RegisterInput struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role,omitempty"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *utils.TokenManager
	hash     func(string) (string, error)
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, tokens *utils.TokenManager, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hash:     utils.HashPassword,
		logger:   logger,
	}
}

// Register creates a player or organizer account. Admin accounts are not
// created through self-registration.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := normalizeName(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := input.Role
	switch role {
	case "":
		role = models.RolePlayer
	case models.RolePlayer, models.RoleOrganizer:
	default:
		return nil, fmt.Errorf("%w: role %q cannot be self-assigned", ErrValidationFailed, role)
	}

	hashedPassword, err := s.hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        normalizeName(input.Email),
		Role:         role,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, handleRepositoryError(err, username)
	}

	s.logger.InfoContext(ctx, "User registered", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, normalizeName(input.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if err := utils.CheckPasswordHash(input.Password, user.PasswordHash); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}
