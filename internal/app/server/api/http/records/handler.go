package records

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"contafeira/internal/app/server/api/http/middleware/auth"
	"contafeira/internal/domain/record"
)

type Handler struct {
	records    record.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(records record.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		records:    records,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.pullOp(), h.pull)
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	n, err := h.records.Upsert(ctx, userID, input.Collection, input.Body.Rows)
	if err != nil {
		switch {
		case errors.Is(err, record.ErrUnknownCollection):
			return nil, huma.Error404NotFound("unknown collection: " + input.Collection)
		case errors.Is(err, record.ErrInvalidRow):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		h.log.Error("push failed", "collection", input.Collection, "error", err)
		return nil, huma.Error500InternalServerError("push failed")
	}

	h.log.Debug("rows upserted", "collection", input.Collection, "count", n)
	return &pushOutput{}, nil
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	var since time.Time
	if input.UpdatedAfter != "" {
		var err error
		since, err = time.Parse(time.RFC3339Nano, input.UpdatedAfter)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("updated_after must be RFC 3339")
		}
	}

	rows, err := h.records.ModifiedSince(ctx, userID, input.Collection, since)
	if err != nil {
		if errors.Is(err, record.ErrUnknownCollection) {
			return nil, huma.Error404NotFound("unknown collection: " + input.Collection)
		}
		h.log.Error("pull failed", "collection", input.Collection, "error", err)
		return nil, huma.Error500InternalServerError("pull failed")
	}

	out := &pullOutput{}
	out.Body.Rows = rows
	if out.Body.Rows == nil {
		out.Body.Rows = []record.Row{}
	}
	return out, nil
}
