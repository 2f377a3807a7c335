package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kallydish/kallydish/internal/hash"
	"github.com/kallydish/kallydish/internal/logging"
	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/mykafka"
	"github.com/kallydish/kallydish/internal/repo"
	"github.com/kallydish/kallydish/internal/transport"
	"github.com/kallydish/kallydish/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Producer      *mykafka.Producer
}

func (s *AuthService) CreateAccessToken(userID uint, accessExp time.Time) (string, error) {
	claims := tokens.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(userID uint, refreshExp time.Time) (string, error) {
	claims := tokens.RefreshClaims{
		TokenType: tokens.RefreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
}

func (s *AuthService) issuePair(userID uint) (*transport.LoginResult, error) {
	accessExp := time.Now().UTC().Add(s.AccessTTL)
	accessToken, err := s.CreateAccessToken(userID, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().UTC().Add(s.RefreshTTL)
	refreshToken, err := s.CreateRefreshToken(userID, refreshExp)
	if err != nil {
		return nil, err
	}

	return &transport.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		UserID:       userID,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("missing required fields: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Phone,
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("register_failed", "status", 400, "reason", "email already registered", "email", req.Email)
			return nil, ErrDuplicateEmail
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("register_successful", "userID", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("missing credentials: %w", ErrValidation)
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "userID", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issuePair(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("login_successful", "userID", user.ID)
	return res, nil
}

// Refresh rotates the pair: the presented token's jti is revoked and a new
// access+refresh pair is minted. A revoked, expired or malformed token is
// rejected before anything is written.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "token parse", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidRefreshToken)
	}

	revoked, err := s.Repo.TokenRevoked(ctx, claims.ID)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if revoked {
		l.Warn("refresh_failed", "status", 401, "reason", "token revoked", "jti", claims.ID)
		return nil, ErrInvalidRefreshToken
	}

	if err := s.Repo.RevokeToken(ctx, claims.ID); err != nil {
		if errors.Is(err, repo.ErrTokenAlreadyRevoked) {
			l.Warn("refresh_failed", "status", 401, "reason", "lost revocation race", "jti", claims.ID)
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	res, err := s.issuePair(uint(userID))
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "userID", userID)
	return res, nil
}

// Logout revokes the refresh token's jti. Logging out twice with the same
// token is rejected: the jti is already on the denylist, so the second call
// is treated like any other revoked-token use.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("logout_failed", "status", 401, "reason", "token parse", "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	if err := s.Repo.RevokeToken(ctx, claims.ID); err != nil {
		if errors.Is(err, repo.ErrTokenAlreadyRevoked) {
			l.Warn("logout_failed", "status", 401, "reason", "token already revoked", "jti", claims.ID)
			return ErrInvalidRefreshToken
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	l.Info("logout_successful", "jti", claims.ID)
	return nil
}

func (s *AuthService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Producer == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, "user_events", key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "topic", "user_events", "error", err)
	}
}
