package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

type authRepoStub struct {
	users     map[string]*models.User
	tokens    map[string]*models.RefreshToken
	lastLogin map[string]time.Time
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:     make(map[string]*models.User),
		tokens:    make(map[string]*models.RefreshToken),
		lastLogin: make(map[string]time.Time),
	}
}

func (r *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.lastLogin[id] = ts
	return nil
}

func (r *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := r.tokens[token]; ok {
		copy := *stored
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range r.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func seedUser(t *testing.T, repo *authRepoStub, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        "teacher@school.test",
		PasswordHash: string(hash),
		FullName:     "Test Teacher",
		Role:         models.RoleTeacher,
		Active:       true,
	}
	repo.users[user.ID] = user
	return user
}

func newAuthServiceForTest(repo *authRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "lms-schedule-api",
	})
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Contains(t, repo.lastLogin, user.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "wrong"})
	require.Error(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@school.test", Password: "s3cret"})
	require.Error(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "s3cret"})
	require.Error(t, err)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	user.Active = false
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.Error(t, err)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked; a second exchange must fail.
	_, err = svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret")
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	svc := newAuthServiceForTest(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	// Unknown or already revoked tokens are a no-op.
	require.NoError(t, svc.Logout(ctx, "unknown"))
	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret")
	svc := newAuthServiceForTest(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)

	_, err = svc.ValidateToken("garbage.token.value")
	require.Error(t, err)
}
