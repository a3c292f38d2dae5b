package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"music-service/internal/auth"
	"music-service/internal/httpx"
)

func (s *Server) handleListPublicPlaylists(w http.ResponseWriter, r *http.Request) {
	s.listPlaylists(w, r, `SELECT `+columns+` FROM playlists WHERE is_private = FALSE ORDER BY created_at`)
}

func (s *Server) handleGetPublicPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if pl.IsPrivate {
		httpx.Error(w, http.StatusForbidden, "This playlist is private.")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"playlist": pl})
}

func (s *Server) handleListOwnPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)
	s.listPlaylists(w, r, `SELECT `+columns+` FROM playlists WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (s *Server) handleGetOwnPlaylist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)

	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if pl.UserID != userID {
		httpx.Error(w, http.StatusUnauthorized, "On this route you can get only your playlist.")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"playlist": pl})
}

// handleListForUser serves the "own" view when a user asks about themselves;
// for anyone else it exposes only public playlists plus a minimal profile
// projection.
func (s *Server) handleListForUser(w http.ResponseWriter, r *http.Request) {
	actingID := r.Header.Get(auth.UserIDHeader)
	targetID := chi.URLParam(r, "userID")

	if _, err := uuid.Parse(targetID); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}

	if targetID == actingID {
		s.handleListOwnPlaylists(w, r)
		return
	}

	var username, picture string
	err := s.db.QueryRow(r.Context(), `SELECT username, picture FROM users WHERE id = $1`, targetID).
		Scan(&username, &picture)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}
	if err != nil {
		log.Printf("music-service: list for user profile: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	playlists, err := s.queryPlaylists(r,
		`SELECT `+columns+` FROM playlists WHERE user_id = $1 AND is_private = FALSE ORDER BY created_at`, targetID)
	if err != nil {
		log.Printf("music-service: list for user playlists: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.List(w, http.StatusOK, len(playlists), map[string]any{
		"user": map[string]string{
			"username": username,
			"picture":  picture,
		},
		"playlists": playlists,
	})
}

// handleCreatePlaylist inserts the playlist and bumps the owner's counter in
// one transaction so the two can never diverge.
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get(auth.UserIDHeader)

	var body struct {
		Name      string `json:"name"`
		IsPrivate bool   `json:"isPrivate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if msgs := validateName(body.Name); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("music-service: create playlist begin tx: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	defer tx.Rollback(ctx)

	// Author is snapshotted from the owner's current username.
	var author string
	err = tx.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&author)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
		return
	}
	if err != nil {
		log.Printf("music-service: create playlist owner lookup: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO playlists (user_id, name, author, is_private)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns+`
	`, userID, body.Name, author, body.IsPrivate)
	pl, err := scanPlaylist(row)
	if err != nil {
		log.Printf("music-service: create playlist insert: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET playlists = playlists + 1 WHERE id = $1`, userID); err != nil {
		log.Printf("music-service: create playlist counter: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("music-service: create playlist commit: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{"playlist": pl})
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)

	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if pl.UserID != userID {
		httpx.Error(w, http.StatusUnauthorized, "You can update only your playlist.")
		return
	}

	var body struct {
		Name      *string `json:"name"`
		IsPrivate *bool   `json:"isPrivate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil {
		pl.Name = strings.TrimSpace(*body.Name)
	}
	if body.IsPrivate != nil {
		pl.IsPrivate = *body.IsPrivate
	}

	if msgs := validateName(pl.Name); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		UPDATE playlists SET name = $2, is_private = $3 WHERE id = $1
	`, pl.ID, pl.Name, pl.IsPrivate); err != nil {
		log.Printf("music-service: update playlist: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"playlist": pl})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)
	s.deletePlaylist(w, r, userID, "You can delete only your playlist.")
}

// deletePlaylist removes the playlist and decrements the owner's counter in
// one transaction. An empty ownerID skips the ownership check (admin path).
func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request, ownerID, denyMsg string) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("music-service: delete playlist begin tx: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	defer tx.Rollback(ctx)

	var playlistOwner string
	err = tx.QueryRow(ctx, `SELECT user_id FROM playlists WHERE id = $1`, id).Scan(&playlistOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}
	if err != nil {
		log.Printf("music-service: delete playlist fetch: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if ownerID != "" && playlistOwner != ownerID {
		httpx.Error(w, http.StatusUnauthorized, denyMsg)
		return
	}

	if _, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id); err != nil {
		log.Printf("music-service: delete playlist exec: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	// The owner may already be deleted (orphaned playlist); the update then
	// touches no rows, which is fine.
	if _, err := tx.Exec(ctx, `UPDATE users SET playlists = playlists - 1 WHERE id = $1`, playlistOwner); err != nil {
		log.Printf("music-service: delete playlist counter: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("music-service: delete playlist commit: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.NoContent(w)
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request, query string, args ...any) {
	playlists, err := s.queryPlaylists(r, query, args...)
	if err != nil {
		log.Printf("music-service: list playlists: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	httpx.List(w, http.StatusOK, len(playlists), map[string]any{"playlists": playlists})
}

func (s *Server) queryPlaylists(r *http.Request, query string, args ...any) ([]Playlist, error) {
	rows, err := s.db.Query(r.Context(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, pl)
	}
	return playlists, rows.Err()
}

// fetchPlaylist resolves a playlist id; it has already written the error
// response when ok is false. A malformed id reads as not found.
func (s *Server) fetchPlaylist(w http.ResponseWriter, r *http.Request, id string) (Playlist, bool) {
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return Playlist{}, false
	}

	row := s.db.QueryRow(r.Context(), `SELECT `+columns+` FROM playlists WHERE id = $1`, id)
	pl, err := scanPlaylist(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return Playlist{}, false
	}
	if err != nil {
		log.Printf("music-service: fetch playlist: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return Playlist{}, false
	}
	return pl, true
}
