package auth

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/account"
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

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	session, err := h.accounts.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrLoginTaken):
			return nil, huma.Error409Conflict("login already taken")
		case errors.Is(err, account.ErrInvalidInput):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		h.log.Error("registration failed", "error", err)
		return nil, huma.Error500InternalServerError("registration failed")
	}

	return &registerOutput{
		Body: SessionResponse{Token: session.Token, TenantID: session.TenantID},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	session, err := h.accounts.Login(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidAuth) {
			return nil, huma.Error401Unauthorized("invalid credentials")
		}
		h.log.Error("login failed", "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	return &loginOutput{
		Body: SessionResponse{Token: session.Token, TenantID: session.TenantID},
	}, nil
}
