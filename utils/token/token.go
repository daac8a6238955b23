package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie carrying the signed token.
const CookieName = "goaltracker_session"

var (
	ErrSessionMissing = errors.New("session cookie missing")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// JWTClaims holds the standard JWT claims plus the session identity.
// RegisteredClaims.ID carries the session id used for revocation.
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionID returns the parsed token id.
func (c *JWTClaims) SessionID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// ValidateToken validates a JWT token string and returns the claims.
func ValidateToken(tokenString string, secret []byte) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GenerateToken creates a signed session token with an absolute expiry.
func GenerateToken(userID uint, username string, secret []byte, expiration time.Duration) (string, *JWTClaims, error) {
	now := time.Now().UTC()
	claims := &JWTClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}

	return signedToken, claims, nil
}

// ExtractToken reads the session token from the request cookie.
func ExtractToken(c *gin.Context) (string, error) {
	value, err := c.Cookie(CookieName)
	if err != nil || value == "" {
		return "", ErrSessionMissing
	}
	return value, nil
}
