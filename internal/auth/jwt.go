package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dengun/assistant/server/domain/entities"
)

// ErrMissingSecret is returned when no signing secret is configured
var ErrMissingSecret = errors.New("jwt secret is required")

// SessionClaims represents the claims in a widget session token
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and validates widget session tokens with HS256
type Issuer struct {
	secret []byte
}

// NewIssuer creates an issuer for the given secret
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// GenerateSessionToken generates a token that expires with the session
func (i *Issuer) GenerateSessionToken(session *entities.Session) (string, error) {
	claims := &SessionClaims{
		SessionID: session.ID,
		Language:  session.Language,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken validates a session token and returns the claims
func (i *Issuer) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
