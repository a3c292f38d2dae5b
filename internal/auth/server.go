package auth

import (
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"music-service/internal/config"
	"music-service/internal/httpx"
	"music-service/internal/store"
)

type Server struct {
	db  store.DB
	rdb *redis.Client
	cfg *config.Config
}

// NewServer builds the auth server. rdb may be nil, in which case token
// revocation on logout/account deletion is skipped.
func NewServer(db store.DB, rdb *redis.Client, cfg *config.Config) *Server {
	return &Server{
		db:  db,
		rdb: rdb,
		cfg: cfg,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	loginLimit := httpx.RateLimit(s.cfg.LoginRateMax, s.cfg.LoginRateWindow,
		"Too many login attempts from same IP. Try again later.")

	r.Post("/register", s.handleRegister)
	r.With(loginLimit).Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)
	r.Post("/forgotPassword", s.handleForgotPassword)
	r.Patch("/resetPassword/{token}", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireUser)
		r.Patch("/changePassword", s.handleChangePassword)
	})

	return r
}
