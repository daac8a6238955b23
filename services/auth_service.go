package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/models"
	"goaltracker/utils/token"

	"golang.org/x/crypto/bcrypt"
)

type JWTClaims = token.JWTClaims

// Session is an issued login session.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  Identity
}

type AuthServiceInterface interface {
	Register(ctx context.Context, db *database.Database, username, password string) (Identity, error)
	Login(ctx context.Context, db *database.Database, username, password string) (Session, error)
	Logout(ctx context.Context, tokenString string) error
	Authenticate(ctx context.Context, tokenString string) (Identity, error)
}

type AuthService struct {
	jwtSecret     []byte
	jwtExpiration time.Duration
	users         UserServiceInterface
	sessions      SessionStore
	dummyHash     []byte
}

func NewAuthService(jwtSecret string, expiration time.Duration, users UserServiceInterface, sessions SessionStore) *AuthService {
	// Compared against when the username is unknown so both failure paths cost
	// one bcrypt comparison.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("goaltracker-dummy-password"), bcrypt.DefaultCost)
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: expiration,
		users:         users,
		sessions:      sessions,
		dummyHash:     dummyHash,
	}
}

func (s *AuthService) Register(ctx context.Context, db *database.Database, username, password string) (Identity, error) {
	input := RegisterInput{Username: strings.TrimSpace(username), Password: password}
	if input.Username == "" || input.Password == "" {
		return Identity{}, NewValidationError("Username and password required")
	}
	if err := validateInput(input, registerMessages); err != nil {
		return Identity{}, err
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Identity{}, NewValidationError("Password must be at most 72 bytes")
		}
		return Identity{}, err
	}

	user, err := s.users.CreateUser(ctx, db, models.User{Username: input.Username, PasswordHash: hash})
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) Login(ctx context.Context, db *database.Database, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, NewValidationError("Username and password required")
	}

	user, err := s.users.GetUserByUsername(ctx, db, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return Session{}, err
		}
		_ = s.ComparePasswords(string(s.dummyHash), password)
		logger.WarnContext(ctx, "Failed login attempt", "username", username)
		return Session{}, ErrInvalidCredentials
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		logger.WarnContext(ctx, "Failed login attempt", "username", username)
		return Session{}, ErrInvalidCredentials
	}

	signed, claims, err := token.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return Session{}, err
	}

	logger.InfoContext(ctx, "User logged in", "username", user.Username)
	return Session{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  Identity{UserID: user.ID, Username: user.Username},
	}, nil
}

// Logout revokes the session behind tokenString. Tokens that are already
// invalid need no revocation.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	logger.InfoContext(ctx, "User logged out", "username", claims.Username)
	return nil
}

// Authenticate resolves a session token to the identity it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrUnauthenticated
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	sessionID, err := claims.SessionID()
	if err != nil || claims.UserID == 0 {
		return Identity{}, ErrUnauthenticated
	}

	revoked, err := s.sessions.IsRevoked(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}
	if revoked {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	return token.ValidateToken(tokenString, s.jwtSecret)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
