package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeSession = "session"
	tokenTypeReset   = "reset"
)

type TokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("invalid token")

func signToken(userID, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// verifyToken checks signature, expiry and token type. A reset token is never
// accepted where a session token is expected, and vice versa.
func verifyToken(raw, tokenType string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid || claims.TokenType != tokenType {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (s *Server) issueSessionToken(userID string) (string, error) {
	return signToken(userID, tokenTypeSession, s.cfg.SessionSecret, s.cfg.SessionTTL)
}

func (s *Server) verifySessionToken(raw string) (*TokenClaims, error) {
	return verifyToken(raw, tokenTypeSession, s.cfg.SessionSecret)
}

func (s *Server) issueResetToken(userID string) (string, error) {
	return signToken(userID, tokenTypeReset, s.cfg.ResetSecret, s.cfg.ResetTTL)
}

func (s *Server) verifyResetToken(raw string) (*TokenClaims, error) {
	return verifyToken(raw, tokenTypeReset, s.cfg.ResetSecret)
}
