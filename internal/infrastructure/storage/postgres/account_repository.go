package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/account"
	"contafeira/internal/domain/tenant"
)

type AccountRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewAccountRepository(db *Storage, log *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:  db,
		log: log.With("component", "account_repository"),
	}
}

func (r *AccountRepository) CreateUser(ctx context.Context, login, passwordHash string) (string, error) {
	var userID string
	err := r.db.Pool().QueryRow(ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`,
		login, passwordHash).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", account.ErrLoginTaken
		}
		r.log.Error("failed to create user", "login", login, "error", err)
		return "", fmt.Errorf("create user: %w", err)
	}
	return userID, nil
}

func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (account.User, error) {
	var u account.User
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, login, password_hash FROM users WHERE login = $1`, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, account.ErrNotFound
		}
		return u, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *AccountRepository) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at)
		 VALUES ($1, decode($2, 'hex'), $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *AccountRepository) ValidateSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.db.Pool().QueryRow(ctx,
		`SELECT user_id FROM sessions
		 WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("invalid session")
	}
	return userID, nil
}

func (r *AccountRepository) CreateProfile(ctx context.Context, p *tenant.Profile) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO profiles (id, plan, subscription_status, subscription_expires_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan,
			subscription_status = EXCLUDED.subscription_status,
			subscription_expires_at = EXCLUDED.subscription_expires_at,
			updated_at = EXCLUDED.updated_at`,
		p.ID, string(p.Plan), string(p.SubscriptionStatus), p.SubscriptionExpiresAt, p.UpdatedAt)
	if err != nil {
		r.log.Error("failed to save profile", "user_id", p.ID, "error", err)
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetProfile(ctx context.Context, userID string) (*tenant.Profile, error) {
	var (
		p       tenant.Profile
		plan    string
		status  string
		expires *time.Time
	)
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, plan, subscription_status, subscription_expires_at, updated_at
		 FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &plan, &status, &expires, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Plan = tenant.Plan(plan)
	p.SubscriptionStatus = tenant.SubscriptionStatus(status)
	p.SubscriptionExpiresAt = expires
	return &p, nil
}
