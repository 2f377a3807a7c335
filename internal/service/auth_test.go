package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/repo"
	"github.com/kallydish/kallydish/internal/transport"
	"github.com/kallydish/kallydish/pkg/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Dish{},
		&models.Like{},
		&models.RevokedToken{},
	))
	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Repo:          &repo.GormRepo{DB: newTestDB(t)},
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func validRegisterRequest() transport.RegisterRequest {
	return transport.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "Secret123",
		Phone:     "555-0100",
	}
}

func TestAuthService_CreateAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	accessExp := time.Now().Add(15 * time.Minute).UTC()

	token, err := svc.CreateAccessToken(42, accessExp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.AccessClaimsFromToken(token, svc.JWTSecret)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, accessExp, claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_CreateRefreshToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	refreshExp := time.Now().Add(24 * time.Hour).UTC()

	token, err := svc.CreateRefreshToken(42, refreshExp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.RefreshClaimsFromToken(token, svc.RefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, tokens.RefreshTokenType, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, refreshExp, claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*transport.RegisterRequest)
	}{
		{name: "empty firstname", mutate: func(r *transport.RegisterRequest) { r.FirstName = "" }},
		{name: "empty lastname", mutate: func(r *transport.RegisterRequest) { r.LastName = "" }},
		{name: "empty email", mutate: func(r *transport.RegisterRequest) { r.Email = "" }},
		{name: "empty password", mutate: func(r *transport.RegisterRequest) { r.Password = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRegisterRequest()
			tt.mutate(&req)

			user, err := svc.Register(ctx, req)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_HashesPasswordAndRejectsDuplicate(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	dup := validRegisterRequest()
	dup.FirstName = "Grace"
	_, err = svc.Register(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Where("email = ?", dup.Email).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	t.Run("success issues token pair", func(t *testing.T) {
		res, err := svc.Login(ctx, "ada@example.com", "Secret123")
		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotEmpty(t, res.AccessToken)
		require.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, registered.ID, res.UserID)

		accessClaims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(registered.ID), accessClaims.Subject)

		refreshClaims, err := tokens.RefreshClaimsFromToken(res.RefreshToken, svc.RefreshSecret)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshClaims.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		res, err := svc.Login(ctx, "ada@example.com", "Secret124")
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		res, err := svc.Login(ctx, "nobody@example.com", "Secret123")
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh_RotatesAndRevokesOldToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)
	loginRes, err := svc.Login(ctx, "ada@example.com", "Secret123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, loginRes.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEmpty(t, refreshed.RefreshToken)
	assert.NotEqual(t, loginRes.RefreshToken, refreshed.RefreshToken)

	// the presented token's jti is now on the denylist
	res, err := svc.Refresh(ctx, loginRes.RefreshToken)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// the rotated token still works
	_, err = svc.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	access, err := svc.CreateAccessToken(1, time.Now().Add(15*time.Minute))
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), access)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_RejectsMalformedToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	res, err := svc.Refresh(context.Background(), "not-a-valid-jwt")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Logout_RevokesAndRejectsSecondCall(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)
	loginRes, err := svc.Login(ctx, "ada@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, loginRes.RefreshToken))

	// the jti is recorded once and every later use is rejected
	err = svc.Logout(ctx, loginRes.RefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	res, err := svc.Refresh(ctx, loginRes.RefreshToken)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.RevokedToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
