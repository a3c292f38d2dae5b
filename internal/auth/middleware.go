package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"music-service/internal/httpx"
)

// UserIDHeader carries the acting identity to downstream handlers once the
// session token has been validated.
const UserIDHeader = "X-User-Id"

// RequireUser is the Unauthenticated -> Identified transition: it extracts the
// session cookie, validates it and stamps the acting-user id on the request.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cfg.CookieName)
		if err != nil || cookie.Value == "" {
			httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
			return
		}

		claims, err := s.verifySessionToken(cookie.Value)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
			return
		}

		revoked, err := s.isRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Printf("music-service: auth revocation check: %v", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
			return
		}
		if revoked {
			httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
			return
		}

		r.Header.Set(UserIDHeader, claims.UserID)
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is the Identified -> Authorized transition for role-gated
// routes. It must run after RequireUser.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
			return
		}

		var isAdmin bool
		err := s.db.QueryRow(r.Context(), `SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&isAdmin)
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
			return
		}
		if err != nil {
			log.Printf("music-service: auth admin check: %v", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
			return
		}
		if !isAdmin {
			httpx.Error(w, http.StatusUnauthorized, "You are not authorized to perform this action.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
