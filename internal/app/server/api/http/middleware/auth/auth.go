package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/account"
)

type Auth struct {
	accounts account.Servicer
	log      *slog.Logger
}

func New(accounts account.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		accounts: accounts,
		log:      log.With("component", "auth_middleware"),
	}
}

type contextKey string

const UserIDKey contextKey = "userID"

// Middleware validates the bearer token and stores the owning user id in
// the request context.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := ctx.Header("Authorization")
		if len(token) < 7 || token[:7] != "Bearer " {
			a.log.Debug("missing or malformed bearer token")
			reject(ctx)
			return
		}

		userID, err := a.accounts.Validate(ctx.Context(), token[7:])
		if err != nil {
			a.log.Debug("token validation failed", "error", err)
			reject(ctx)
			return
		}

		next(huma.WithContext(ctx, WithUserID(ctx.Context(), userID)))
	}
}

func reject(ctx huma.Context) {
	ctx.SetStatus(http.StatusUnauthorized)
	ctx.SetHeader("Content-Type", "application/json")
	json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": "Unauthorized",
	})
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the authenticated user id placed by Middleware.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
