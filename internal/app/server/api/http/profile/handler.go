package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"contafeira/internal/app/server/api/http/middleware/auth"
	"contafeira/internal/domain/account"
	"contafeira/internal/domain/tenant"
)

type Handler struct {
	accounts   account.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(accounts account.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		accounts:   accounts,
		log:        log,
		middleware: middleware,
	}
}

type getInput struct{}

type getOutput struct {
	Body tenant.Profile
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "profile-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get the authenticated tenant's profile",
		Tags:        []string{"profile"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}, h.get)
}

func (h *Handler) get(ctx context.Context, _ *getInput) (*getOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	p, err := h.accounts.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, huma.Error404NotFound("profile not found")
		}
		h.log.Error("profile lookup failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("profile lookup failed")
	}

	return &getOutput{Body: *p}, nil
}
