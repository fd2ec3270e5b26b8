package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/services"
	"github.com/Dosada05/tabletop-tournaments/utils"
)

type contextKey string

const userContextKey contextKey = "user"

var ErrNoClaims = errors.New("user claims not found in context")

func ClaimsFromContext(ctx context.Context) (*utils.Claims, error) {
	claims, ok := ctx.Value(userContextKey).(*utils.Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// ActorFromContext converts the token claims into the caller seen by services.
func ActorFromContext(ctx context.Context) (services.Actor, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}

// WithClaims is used by tests and internal callers to build an authenticated
// context.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}
