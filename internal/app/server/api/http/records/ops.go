package records

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-push",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/{collection}",
		Summary:     "Upsert a batch of rows into a collection",
		Description: "Applies last-write-wins per row: an incoming row replaces the stored one only when its updated_at is newer.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-pull",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/{collection}",
		Summary:     "Fetch rows modified after a watermark",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
