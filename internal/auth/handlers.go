package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"music-service/internal/httpx"
	"music-service/internal/user"
)

func validatePassword(password string) []string {
	switch {
	case password == "":
		return []string{"User must have password."}
	case len(password) < 6:
		return []string{"Password must be at least 6 characters."}
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Password != body.ConfirmPassword {
		httpx.Error(w, http.StatusBadRequest, "Password and confirm password must match.")
		return
	}

	username := strings.TrimSpace(body.Username)
	email := strings.TrimSpace(strings.ToLower(body.Email))

	msgs := user.ValidateProfile(username, email)
	msgs = append(msgs, validatePassword(body.Password)...)
	if len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	hash, err := hashPassword(body.Password)
	if err != nil {
		log.Printf("music-service: register hash: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	row := s.db.QueryRow(r.Context(), `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING `+user.Columns+`
	`, username, email, hash)
	u, err := user.Scan(row)
	if err != nil {
		if httpx.IsDuplicateKey(err) {
			httpx.Error(w, http.StatusBadRequest, httpx.MsgDuplicate)
			return
		}
		log.Printf("music-service: register insert: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	token, err := s.issueSessionToken(u.ID)
	if err != nil {
		log.Printf("music-service: register sign token: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	s.setSessionCookie(w, token)

	httpx.JSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(body.Email))

	// The message never reveals which of the two was wrong.
	u, err := s.findUserByEmail(r.Context(), email)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusUnauthorized, "Email or password, or both, are incorrect.")
		return
	}
	if err != nil {
		log.Printf("music-service: login lookup: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if !comparePasswords(body.Password, u.Password) {
		httpx.Error(w, http.StatusUnauthorized, "Email or password, or both, are incorrect.")
		return
	}

	token, err := s.issueSessionToken(u.ID)
	if err != nil {
		log.Printf("music-service: login sign token: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	s.setSessionCookie(w, token)

	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.InvalidateSession(w, r)
	httpx.NoContent(w)
}

// handleForgotPassword issues a reset token and logs the reset link.
// Delivering it anywhere is explicitly out of scope.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(body.Email))

	u, err := s.findUserByEmail(r.Context(), email)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusBadRequest, "Email is incorrect or such user does not exist.")
		return
	}
	if err != nil {
		log.Printf("music-service: forgot password lookup: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	resetToken, err := s.issueResetToken(u.ID)
	if err != nil {
		log.Printf("music-service: forgot password sign token: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	log.Printf("music-service: password reset link for %s: /api/v1/auth/resetPassword/%s", u.Email, resetToken)

	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Link for resetting password should be sent to your email.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")

	claims, err := s.verifyResetToken(raw)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "The token must have expired.")
		return
	}

	var body struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Password != body.ConfirmPassword {
		httpx.Error(w, http.StatusBadRequest, "Password and confirm password must match.")
		return
	}
	if msgs := validatePassword(body.Password); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	hash, err := hashPassword(body.Password)
	if err != nil {
		log.Printf("music-service: reset password hash: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	row := s.db.QueryRow(r.Context(), `
		UPDATE users SET password = $2 WHERE id = $1
		RETURNING `+user.Columns+`
	`, claims.UserID, hash)
	u, err := user.Scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}
	if err != nil {
		log.Printf("music-service: reset password update: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	// A fresh session is issued right away so the caller is logged in.
	token, err := s.issueSessionToken(u.ID)
	if err != nil {
		log.Printf("music-service: reset password sign token: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	s.setSessionCookie(w, token)

	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserIDHeader)

	var body struct {
		OldPassword     string `json:"oldPassword"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, err := s.findUserByID(r.Context(), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusUnauthorized, "You need to login in order to proceed.")
		return
	}
	if err != nil {
		log.Printf("music-service: change password lookup: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if !comparePasswords(body.OldPassword, u.Password) {
		httpx.Error(w, http.StatusUnauthorized, "Please provide the correct old password.")
		return
	}
	if body.Password != body.ConfirmPassword {
		httpx.Error(w, http.StatusBadRequest, "Password and confirm password must match.")
		return
	}
	if msgs := validatePassword(body.Password); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}

	hash, err := hashPassword(body.Password)
	if err != nil {
		log.Printf("music-service: change password hash: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	if _, err := s.db.Exec(r.Context(), `UPDATE users SET password = $2 WHERE id = $1`, u.ID, hash); err != nil {
		log.Printf("music-service: change password update: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}
