package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-service/internal/httpx"
	"music-service/internal/storage"
)

const maxPictureSize = 5 << 20

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := s.fetchActingUser(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account": u})
}

// handleUpdateAccount changes username/email only. Password and picture have
// dedicated routes and are rejected here with a pointer to them.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Picture  *string `json:"picture"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Password != nil {
		httpx.Error(w, http.StatusBadRequest, "You can change password on /changePassword route.")
		return
	}
	if body.Picture != nil {
		httpx.Error(w, http.StatusBadRequest, "You can change picture on /changePicture route.")
		return
	}

	u, ok := s.fetchActingUser(w, r)
	if !ok {
		return
	}

	if body.Username != nil {
		u.Username = strings.TrimSpace(*body.Username)
	}
	if body.Email != nil {
		u.Email = strings.TrimSpace(strings.ToLower(*body.Email))
	}

	if msgs := ValidateProfile(u.Username, u.Email); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		UPDATE users SET username = $2, email = $3 WHERE id = $1
	`, u.ID, u.Username, u.Email); err != nil {
		if httpx.IsDuplicateKey(err) {
			httpx.Error(w, http.StatusBadRequest, httpx.MsgDuplicate)
			return
		}
		log.Printf("music-service: update account: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"account": u})
}

// handleDeleteAccount removes the account and invalidates the session. The
// user's playlists are left in place, orphaned on purpose.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	if _, err := s.db.Exec(r.Context(), `DELETE FROM users WHERE id = $1`, userID); err != nil {
		log.Printf("music-service: delete account: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	s.sessions.InvalidateSession(w, r)
	httpx.NoContent(w)
}

func (s *Server) handleChangePicture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPictureSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Picture file is required.")
		return
	}
	defer file.Close()

	name, err := storage.PictureName(header.Filename, header.Header.Get("Content-Type"))
	if errors.Is(err, storage.ErrNotImage) {
		httpx.Error(w, http.StatusBadRequest, "You can upload only images.")
		return
	}
	if err != nil {
		log.Printf("music-service: change picture name: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	u, ok := s.fetchActingUser(w, r)
	if !ok {
		return
	}

	if err := s.files.Save(name, file); err != nil {
		log.Printf("music-service: change picture save: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if _, err := s.db.Exec(r.Context(), `UPDATE users SET picture = $2 WHERE id = $1`, u.ID, name); err != nil {
		log.Printf("music-service: change picture update: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	u.Picture = name

	httpx.JSON(w, http.StatusOK, map[string]any{"account": u})
}

func (s *Server) handleRemovePicture(w http.ResponseWriter, r *http.Request) {
	u, ok := s.fetchActingUser(w, r)
	if !ok {
		return
	}

	if _, err := s.db.Exec(r.Context(), `UPDATE users SET picture = $2 WHERE id = $1`, u.ID, DefaultPicture); err != nil {
		log.Printf("music-service: remove picture update: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if u.Picture != DefaultPicture {
		if err := s.files.Remove(u.Picture); err != nil {
			log.Printf("music-service: remove picture file %s: %v", u.Picture, err)
		}
	}

	httpx.NoContent(w)
}

// fetchActingUser loads the identified account; it has already written the
// error response when ok is false.
func (s *Server) fetchActingUser(w http.ResponseWriter, r *http.Request) (User, bool) {
	userID := currentUserID(r)

	row := s.db.QueryRow(r.Context(), `SELECT `+Columns+` FROM users WHERE id = $1`, userID)
	u, err := Scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
		return User{}, false
	}
	if err != nil {
		log.Printf("music-service: fetch account: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return User{}, false
	}
	return u, true
}
