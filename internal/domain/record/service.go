// Package record is the server half of the offline sync protocol: it stores
// the synced collections exactly as the clients ship them and answers
// incremental change queries.
package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidRow        = errors.New("invalid row")
)

// Collections lists every table clients may sync, under the wire names the
// protocol was born with.
var Collections = []string{"produtos", "vendas", "resumos", "despesas", "configuracao"}

func Known(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// Row is one wire record. The repository maps its keys onto the collection's
// columns; unknown keys are rejected there.
type Row map[string]any

type Servicer interface {
	Upsert(ctx context.Context, userID, collection string, rows []Row) (int, error)
	ModifiedSince(ctx context.Context, userID, collection string, since time.Time) ([]Row, error)
}

type Repository interface {
	Upsert(ctx context.Context, collection string, rows []Row) error
	ModifiedSince(ctx context.Context, userID, collection string, since time.Time) ([]Row, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "record_service"),
	}
}

// Upsert stores a batch for the user. Ownership is enforced here: whatever
// user_id a row claims, it is overwritten with the authenticated identity
// before it touches storage.
func (s *Service) Upsert(ctx context.Context, userID, collection string, rows []Row) (int, error) {
	if !Known(collection) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	for _, row := range rows {
		id, ok := row["id"].(string)
		if !ok || id == "" {
			return 0, fmt.Errorf("%w: missing id", ErrInvalidRow)
		}
		if _, ok := row["updated_at"]; !ok {
			return 0, fmt.Errorf("%w: missing updated_at", ErrInvalidRow)
		}
		row["user_id"] = userID
	}

	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.repo.Upsert(ctx, collection, rows); err != nil {
		return 0, err
	}

	s.log.Debug("batch stored", "collection", collection, "user_id", userID, "rows", len(rows))
	return len(rows), nil
}

// ModifiedSince returns the user's rows changed strictly after since.
func (s *Service) ModifiedSince(ctx context.Context, userID, collection string, since time.Time) ([]Row, error) {
	if !Known(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return s.repo.ModifiedSince(ctx, userID, collection, since)
}
