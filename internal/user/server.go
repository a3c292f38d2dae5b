package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-service/internal/storage"
	"music-service/internal/store"
)

// SessionInvalidator revokes the request's session token and expires the
// cookie. Implemented by the auth server.
type SessionInvalidator interface {
	InvalidateSession(w http.ResponseWriter, r *http.Request)
}

type Server struct {
	db       store.DB
	files    storage.Store
	sessions SessionInvalidator
}

func NewServer(db store.DB, files storage.Store, sessions SessionInvalidator) *Server {
	return &Server{
		db:       db,
		files:    files,
		sessions: sessions,
	}
}

// userIDHeader matches the header the authorization gate stamps on every
// identified request.
const userIDHeader = "X-User-Id"

func currentUserID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

func (s *Server) Router(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/account", s.handleGetAccount)
		r.Patch("/account", s.handleUpdateAccount)
		r.Delete("/account", s.handleDeleteAccount)
		r.Patch("/account/picture", s.handleChangePicture)
		r.Delete("/account/picture", s.handleRemovePicture)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser, requireAdmin)

		r.Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Patch("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	return r
}
