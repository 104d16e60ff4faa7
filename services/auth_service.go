package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"dine-server/models"
	"dine-server/store"
	"dine-server/utils/errors"
)

// AuthService is the only component that reads passwords or writes the
// refresh-token field on a user record.
type AuthService struct {
	store     store.UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

// Claims are the access-token claims; the refresh token carries only
// RegisteredClaims with Subject set to the user id.
type Claims struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// dummyPasswordHash keeps the unknown-username login path as slow as a real
// bcrypt comparison. Hash of an unused placeholder at the default cost.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func NewAuthService(userStore store.UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		store:     userStore,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Signup creates a new user with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, errors.ErrInvalidInput
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "HASH_ERROR", "Failed to hash password", 500)
	}

	user := &models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  string(passwordHash),
		Friends:       []string{},
		Favorites:     []string{},
		FriendInvites: []models.FriendInvite{},
		Messages:      []models.Message{},
		Events:        []models.Event{},
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		if err == store.ErrDuplicate {
			return nil, errors.ErrConflict
		}
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to create user", 500)
	}

	log.Info().Str("username", username).Msg("user signed up")
	return user, nil
}

// Login verifies credentials and mints an access token plus a refresh token.
// The refresh token overwrites any prior value on the user record, so a login
// from a second device invalidates the first device's session.
func (s *AuthService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		// Do not reveal whether the username exists, not even by timing:
		// burn a compare against a throwaway hash before failing.
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return "", "", errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", errors.ErrInvalidCredentials
	}

	accessToken, err = s.mintAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.mintRefreshToken(user)
	if err != nil {
		return "", "", err
	}

	user.RefreshToken = refreshToken
	if err := s.store.SaveUser(ctx, user); err != nil {
		return "", "", errors.Wrap(err, "DB_ERROR", "Failed to persist refresh token", 500)
	}

	log.Info().Str("user_id", user.ID).Msg("user logged in")
	return accessToken, refreshToken, nil
}

// Refresh exchanges a refresh-token cookie value for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.store.UserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", errors.ErrForbidden
	}

	// The token's embedded subject must match the user it was found on;
	// a mismatch means the stored value is stale or was swapped.
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, s.keyFunc)
	if err != nil || !token.Valid || claims.Subject != user.ID {
		return "", errors.ErrForbidden
	}

	return s.mintAccessToken(user)
}

// ValidateAccessToken verifies signature and expiry and returns the subject
// user id. It backs the JWT middleware on every protected route.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", errors.ErrUnauthorized
	}
	return claims.UserID, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", 401)
	}
	return s.jwtSecret, nil
}

func (s *AuthService) mintAccessToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to sign token", 500)
	}
	return signed, nil
}

func (s *AuthService) mintRefreshToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to sign refresh token", 500)
	}
	return signed, nil
}
