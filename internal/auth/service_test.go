package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/internal/users"
	pkgauth "github.com/nmtruong/shophub-backend/pkg/auth"
	"github.com/nmtruong/shophub-backend/pkg/auth/session"
	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/enums"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
	"github.com/nmtruong/shophub-backend/pkg/security"
)

type memUserRepo struct {
	byEmail map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*models.User{}}
}

func (m *memUserRepo) WithTx(tx *gorm.DB) users.Repository { return m }

func (m *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.byEmail[user.Email] = user
	return user, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (m *memUserRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	return nil, nil
}

func (m *memUserRepo) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) CreateAddress(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error) {
	return address, nil
}

func (m *memUserRepo) UpdateAddress(ctx context.Context, address *models.UserAddress) error {
	return nil
}

func (m *memUserRepo) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return nil
}

func (m *memUserRepo) ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error { return nil }

type memSessions struct {
	tokens map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{tokens: map[string]string{}}
}

func (m *memSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.tokens[accessID] = token
	return token, nil
}

func (m *memSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.tokens, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	m.tokens[newID] = token
	return newID, token, nil
}

func (m *memSessions) Revoke(ctx context.Context, accessID string) error {
	delete(m.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "shophub-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 1440,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo users.Repository, sessions SessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo: repo,
		Sessions: sessions,
		JWT:      testJWTConfig(),
		Password: testPasswordConfig(),
		Now:      time.Now,
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(t, repo, newMemSessions())

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Buyer",
		Email:    "Buyer@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "buyer@example.com", registered.User.Email)
	assert.Equal(t, enums.UserRoleCustomer, registered.User.Role)

	logged, err := svc.Login(context.Background(), LoginInput{
		Email:    "buyer@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), logged.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.False(t, claims.IsAdmin())
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemUserRepo()
	hash, err := security.HashPassword("right-password", testPasswordConfig())
	require.NoError(t, err)
	repo.byEmail["buyer@example.com"] = &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
	}
	svc := newTestService(t, repo, newMemSessions())

	_, err = svc.Login(context.Background(), LoginInput{Email: "buyer@example.com", Password: "wrong"})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code)
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	svc := newTestService(t, newMemUserRepo(), newMemSessions())

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code)
}

func TestRefreshRotatesSession(t *testing.T) {
	sessions := newMemSessions()
	svc := newTestService(t, newMemUserRepo(), sessions)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "buyer@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, pair.RefreshToken)

	// the old pair is burned
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	require.Error(t, err)
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	svc := newTestService(t, newMemUserRepo(), newMemSessions())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "buyer@example.com",
		Password: "short",
	})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code)
}
