package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type fakeAuthRepo struct {
	user      *models.User
	subjectID string
}

func (f *fakeAuthRepo) FindByEmail(context.Context, string) (*models.User, error) {
	if f.user == nil {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeAuthRepo) FindByID(context.Context, string) (*models.User, error) {
	if f.user == nil {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeAuthRepo) SubjectIDFor(context.Context, string) (string, error) {
	return f.subjectID, nil
}

func (f *fakeAuthRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	return nil
}

func newAuthUser(t *testing.T, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "admin@school.test",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := &fakeAuthRepo{user: newAuthUser(t, "secret123", models.RoleStudent), subjectID: "stu-42"}
	svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "stu-42", claims.SubjectID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &fakeAuthRepo{user: newAuthUser(t, "secret123", models.RoleAdmin)}
	svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := newAuthUser(t, "secret123", models.RoleAdmin)
	user.Active = false
	svc := NewAuthService(&fakeAuthRepo{user: user}, nil, nil, AuthConfig{Secret: "test-secret"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	repo := &fakeAuthRepo{user: newAuthUser(t, "secret123", models.RoleAdmin)}
	svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "different-secret"})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
