package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"music-service/internal/auth"
	"music-service/internal/httpx"
)

// Membership mutations append/remove the song id and adjust the denormalized
// count in a single guarded UPDATE, so the two can never be observed apart
// and two concurrent requests cannot both apply.

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)

	var body struct {
		SongID string `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if pl.UserID != userID {
		httpx.Error(w, http.StatusUnauthorized, "You can add song only to your playlist.")
		return
	}

	if !s.songExists(w, r, body.SongID) {
		return
	}

	if slices.Contains(pl.Songs, body.SongID) {
		httpx.Error(w, http.StatusBadRequest, "That song is already in playlist.")
		return
	}

	row := s.db.QueryRow(r.Context(), `
		UPDATE playlists
		SET songs = array_append(songs, $2), songs_num = songs_num + 1
		WHERE id = $1 AND NOT ($2 = ANY(songs))
		RETURNING `+columns+`
	`, pl.ID, body.SongID)
	updated, err := scanPlaylist(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// A concurrent add slipped in between the read and the update.
		httpx.Error(w, http.StatusBadRequest, "That song is already in playlist.")
		return
	}
	if err != nil {
		log.Printf("music-service: add song: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"playlist": updated})
}

func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(auth.UserIDHeader)
	songID := chi.URLParam(r, "songID")

	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if pl.UserID != userID {
		httpx.Error(w, http.StatusUnauthorized, "You can remove song only from your playlist.")
		return
	}

	if _, err := uuid.Parse(songID); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}

	if !slices.Contains(pl.Songs, songID) {
		httpx.Error(w, http.StatusBadRequest, "You can remove only the song that is in the playlist.")
		return
	}

	_, err := s.db.Exec(r.Context(), `
		UPDATE playlists
		SET songs = array_remove(songs, $2), songs_num = songs_num - 1
		WHERE id = $1 AND $2 = ANY(songs)
	`, pl.ID, songID)
	if err != nil {
		log.Printf("music-service: remove song: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.NoContent(w)
}

// handleAdminUpdatePlaylist is the administrative bypass: name, privacy and
// the whole song list, no ownership check.
func (s *Server) handleAdminUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.fetchPlaylist(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var body struct {
		Name      *string   `json:"name"`
		IsPrivate *bool     `json:"isPrivate"`
		Songs     *[]string `json:"songs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil {
		pl.Name = *body.Name
	}
	if body.IsPrivate != nil {
		pl.IsPrivate = *body.IsPrivate
	}
	if body.Songs != nil {
		songs := *body.Songs
		seen := map[string]bool{}
		for _, id := range songs {
			if _, err := uuid.Parse(id); err != nil {
				httpx.Error(w, http.StatusBadRequest, "Song list contains an invalid id.")
				return
			}
			if seen[id] {
				httpx.Error(w, http.StatusBadRequest, "Song list contains a duplicate id.")
				return
			}
			seen[id] = true
		}
		pl.Songs = songs
		pl.SongsNum = len(songs)
	}

	if msgs := validateName(pl.Name); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		UPDATE playlists
		SET name = $2, is_private = $3, songs = $4, songs_num = $5
		WHERE id = $1
	`, pl.ID, pl.Name, pl.IsPrivate, pl.Songs, pl.SongsNum); err != nil {
		log.Printf("music-service: admin update playlist: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"playlist": pl})
}

func (s *Server) handleAdminDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	s.deletePlaylist(w, r, "", "")
}

// songExists verifies the catalog entry; it has already written the error
// response when it returns false.
func (s *Server) songExists(w http.ResponseWriter, r *http.Request, songID string) bool {
	if _, err := uuid.Parse(songID); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return false
	}

	var id string
	err := s.db.QueryRow(r.Context(), `SELECT id FROM songs WHERE id = $1`, songID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return false
	}
	if err != nil {
		log.Printf("music-service: song lookup: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return false
	}
	return true
}
