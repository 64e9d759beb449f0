package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contafeira/internal/domain/tenant"
	"contafeira/internal/utils/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, login, passwordHash string) (string, error) {
	args := m.Called(ctx, login, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) ValidateSession(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) CreateProfile(ctx context.Context, p *tenant.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetProfile(ctx context.Context, userID string) (*tenant.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Profile), args.Error(1)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, 24*time.Hour, 7*24*time.Hour, logger.Discard())
}

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	ctx := context.Background()

	repo.On("CreateUser", ctx, "maria", mock.AnythingOfType("string")).Return("user-1", nil)
	repo.On("CreateProfile", ctx, mock.MatchedBy(func(p *tenant.Profile) bool {
		return p.ID == "user-1" &&
			p.Plan == tenant.PlanProTrial &&
			p.SubscriptionStatus == tenant.StatusTrial &&
			p.SubscriptionExpiresAt != nil
	})).Return(nil)
	repo.On("CreateSession", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	session, err := svc.Register(ctx, "maria", "senha-segura")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.TenantID)
	assert.NotEmpty(t, session.Token)
	repo.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"login too short", "ab", "senha-segura"},
		{"login too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "senha-segura"},
		{"password too short", "maria", "curta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.login, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	repo.AssertNotCalled(t, "CreateUser")
}

func TestLogin(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("senha-segura"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("FindByLogin", ctx, "maria").Return(User{ID: "user-1", Login: "maria", PasswordHash: string(hash)}, nil)
	repo.On("CreateSession", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	session, err := svc.Login(ctx, "maria", "senha-segura")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.TenantID)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "maria", "errada")
		assert.ErrorIs(t, err, ErrInvalidAuth)
	})

	t.Run("unknown login", func(t *testing.T) {
		repo.On("FindByLogin", ctx, "ghost").Return(User{}, ErrNotFound)
		_, err := svc.Login(ctx, "ghost", "senha-segura")
		assert.ErrorIs(t, err, ErrInvalidAuth)
	})
}

func TestValidateHashesToken(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	ctx := context.Background()

	repo.On("ValidateSession", ctx, mock.MatchedBy(func(hash string) bool {
		// The raw token must never reach the repository.
		return hash != "raw-token" && len(hash) == 64
	})).Return("user-1", nil)

	userID, err := svc.Validate(ctx, "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	repo.AssertExpectations(t)
}
