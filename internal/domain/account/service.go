package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"contafeira/internal/domain/tenant"
)

const (
	minLoginLen    = 3
	maxLoginLen    = 32
	minPasswordLen = 8
)

type Servicer interface {
	Register(ctx context.Context, login, password string) (*Session, error)
	Login(ctx context.Context, login, password string) (*Session, error)
	Validate(ctx context.Context, token string) (string, error)
	Profile(ctx context.Context, userID string) (*tenant.Profile, error)
}

type Repository interface {
	CreateUser(ctx context.Context, login, passwordHash string) (string, error)
	FindByLogin(ctx context.Context, login string) (User, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ValidateSession(ctx context.Context, tokenHash string) (string, error)
	CreateProfile(ctx context.Context, p *tenant.Profile) error
	GetProfile(ctx context.Context, userID string) (*tenant.Profile, error)
}

// Session is an authenticated login: the bearer token plus the tenant the
// token answers for.
type Session struct {
	Token    string
	TenantID string
}

type Service struct {
	repo       Repository
	log        *slog.Logger
	sessionTTL time.Duration
	trial      time.Duration
}

func NewService(repo Repository, sessionTTL, trial time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		log:        log.With("component", "account_service"),
		sessionTTL: sessionTTL,
		trial:      trial,
	}
}

// Register creates the account with a pro trial profile and opens a session.
func (s *Service) Register(ctx context.Context, login, password string) (*Session, error) {
	if err := validateRegister(login, password); err != nil {
		s.log.Debug("registration rejected", "login", login, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.CreateUser(ctx, login, string(hash))
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.trial)
	profile := &tenant.Profile{
		ID:                    userID,
		Plan:                  tenant.PlanProTrial,
		SubscriptionStatus:    tenant.StatusTrial,
		SubscriptionExpiresAt: &expires,
		UpdatedAt:             time.Now().UTC(),
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info("account registered", "user_id", userID)
	return s.openSession(ctx, userID)
}

// Login authenticates the credentials and opens a session.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, ErrInvalidAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidAuth
	}
	return s.openSession(ctx, u.ID)
}

func (s *Service) openSession(ctx context.Context, userID string) (*Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)
	tokenHash := sha256.Sum256([]byte(token))

	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.repo.CreateSession(ctx, userID, hex.EncodeToString(tokenHash[:]), expiresAt); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Session{Token: token, TenantID: userID}, nil
}

// Validate resolves a bearer token to the owning user id.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	tokenHash := sha256.Sum256([]byte(token))
	return s.repo.ValidateSession(ctx, hex.EncodeToString(tokenHash[:]))
}

// Profile returns the tenant profile gating the pro feature surface.
func (s *Service) Profile(ctx context.Context, userID string) (*tenant.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func validateRegister(login, password string) error {
	login = strings.TrimSpace(login)
	if len(login) < minLoginLen || len(login) > maxLoginLen {
		return fmt.Errorf("login must be %d to %d characters", minLoginLen, maxLoginLen)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
