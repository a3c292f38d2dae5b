package playlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-service/internal/store"
)

type Server struct {
	db store.DB
}

func NewServer(db store.DB) *Server {
	return &Server{db: db}
}

// Router wires the playlist engine. Browsing public playlists is open;
// everything else needs a session, and the /admin subtree needs the
// administrator role on top.
func (s *Server) Router(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleListPublicPlaylists)
	r.Get("/{id}", s.handleGetPublicPlaylist)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/account", s.handleListOwnPlaylists)
		r.Get("/account/{id}", s.handleGetOwnPlaylist)
		r.Get("/by-user/{userID}", s.handleListForUser)

		r.Post("/", s.handleCreatePlaylist)
		r.Patch("/{id}", s.handleUpdatePlaylist)
		r.Delete("/{id}", s.handleDeletePlaylist)

		r.Post("/{id}/songs", s.handleAddSong)
		r.Delete("/{id}/songs/{songID}", s.handleRemoveSong)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser, requireAdmin)

		r.Patch("/admin/{id}", s.handleAdminUpdatePlaylist)
		r.Delete("/admin/{id}", s.handleAdminDeletePlaylist)
	})

	return r
}
