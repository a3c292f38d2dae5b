package song

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-service/internal/storage"
	"music-service/internal/store"
)

type Server struct {
	db    store.DB
	files storage.Store
}

func NewServer(db store.DB, files storage.Store) *Server {
	return &Server{
		db:    db,
		files: files,
	}
}

// Router wires the catalog. Listing and streaming are public; fetching one
// song needs a session; every mutation is administrator-gated.
func (s *Server) Router(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleListSongs)
	r.Get("/{id}/play", s.handlePlaySong)
	r.Get("/{id}/download", s.handleDownloadSong)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/{id}", s.handleGetSong)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser, requireAdmin)
		r.Post("/", s.handleCreateSong)
		r.Patch("/{id}", s.handleUpdateSong)
		r.Delete("/{id}", s.handleDeleteSong)
	})

	return r
}
