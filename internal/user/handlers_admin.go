package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"music-service/internal/httpx"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(r.Context(), `SELECT `+Columns+` FROM users ORDER BY created_at`)
	if err != nil {
		log.Printf("music-service: list users: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := Scan(rows)
		if err != nil {
			log.Printf("music-service: list users scan: %v", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Printf("music-service: list users rows: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.List(w, http.StatusOK, len(users), map[string]any{"users": users})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.fetchUser(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

// handleUpdateUser is the administrative update: it may also set the
// privilege flag and the playlist counter. Password stays out of reach even
// here.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.fetchUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		Playlists *int    `json:"playlists"`
		IsAdmin   *bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Username != nil {
		u.Username = strings.TrimSpace(*body.Username)
	}
	if body.Email != nil {
		u.Email = strings.TrimSpace(strings.ToLower(*body.Email))
	}
	if body.Playlists != nil {
		u.Playlists = *body.Playlists
	}
	if body.IsAdmin != nil {
		u.IsAdmin = *body.IsAdmin
	}

	if msgs := ValidateProfile(u.Username, u.Email); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		UPDATE users SET username = $2, email = $3, playlists = $4, is_admin = $5 WHERE id = $1
	`, u.ID, u.Username, u.Email, u.Playlists, u.IsAdmin); err != nil {
		if httpx.IsDuplicateKey(err) {
			httpx.Error(w, http.StatusBadRequest, httpx.MsgDuplicate)
			return
		}
		log.Printf("music-service: admin update user: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}

	tag, err := s.db.Exec(r.Context(), `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Printf("music-service: admin delete user: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	if tag.RowsAffected() == 0 {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}

	httpx.NoContent(w)
}

func (s *Server) fetchUser(w http.ResponseWriter, r *http.Request) (User, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return User{}, false
	}

	row := s.db.QueryRow(r.Context(), `SELECT `+Columns+` FROM users WHERE id = $1`, id)
	u, err := Scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return User{}, false
	}
	if err != nil {
		log.Printf("music-service: fetch user: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return User{}, false
	}
	return u, true
}
