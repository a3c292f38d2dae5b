package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoked token ids live in redis until the token would have expired anyway.

func revocationKey(jti string) string {
	return "revoked:" + jti
}

func (s *Server) revokeClaims(ctx context.Context, claims *TokenClaims) {
	if s.rdb == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.rdb.Set(ctx, revocationKey(claims.ID), "1", ttl).Err(); err != nil {
		log.Printf("music-service: revoke token: %v", err)
	}
}

func (s *Server) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	_, err := s.rdb.Get(ctx, revocationKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateSession revokes the request's session token (best-effort) and
// expires the cookie. Used by logout and by account deletion.
func (s *Server) InvalidateSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.CookieName); err == nil && cookie.Value != "" {
		if claims, err := s.verifySessionToken(cookie.Value); err == nil {
			s.revokeClaims(r.Context(), claims)
		}
	}
	s.clearSessionCookie(w)
}
