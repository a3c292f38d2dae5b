package song

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"music-service/internal/httpx"
	"music-service/internal/storage"
)

const maxUploadSize = 32 << 20

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(r.Context(), `SELECT `+columns+` FROM songs ORDER BY created_at`)
	if err != nil {
		log.Printf("music-service: list songs: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		sg, err := scanSong(rows)
		if err != nil {
			log.Printf("music-service: list songs scan: %v", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
			return
		}
		songs = append(songs, sg)
	}
	if err := rows.Err(); err != nil {
		log.Printf("music-service: list songs rows: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.List(w, http.StatusOK, len(songs), map[string]any{"songs": songs})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	sg, ok := s.fetchSong(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"song": sg})
}

// handleCreateSong stores the uploaded file first and the metadata second; if
// the insert fails the orphaned file is acceptable collateral.
func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("song")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Song file is required.")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	artist := strings.TrimSpace(r.FormValue("artist"))
	lyrics := r.FormValue("lyrics")

	if msgs := validateMetadata(title, artist, lyrics); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}
	if lyrics == "" {
		lyrics = DefaultLyrics
	}

	name := storage.AudioName(header.Filename, time.Now())
	if err := s.files.Save(name, file); err != nil {
		log.Printf("music-service: create song save file: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	row := s.db.QueryRow(r.Context(), `
		INSERT INTO songs (title, artist, lyrics, file)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns+`
	`, title, artist, lyrics, name)
	sg, err := scanSong(row)
	if err != nil {
		log.Printf("music-service: create song insert: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{"song": sg})
}

// handleUpdateSong changes metadata only; the file reference is immutable
// through this path.
func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	sg, ok := s.fetchSong(w, r)
	if !ok {
		return
	}

	var body struct {
		Title  *string `json:"title"`
		Artist *string `json:"artist"`
		Lyrics *string `json:"lyrics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Title != nil {
		sg.Title = strings.TrimSpace(*body.Title)
	}
	if body.Artist != nil {
		sg.Artist = strings.TrimSpace(*body.Artist)
	}
	if body.Lyrics != nil {
		sg.Lyrics = *body.Lyrics
	}

	if msgs := validateMetadata(sg.Title, sg.Artist, sg.Lyrics); len(msgs) > 0 {
		httpx.Errors(w, http.StatusBadRequest, msgs)
		return
	}
	if sg.Lyrics == "" {
		sg.Lyrics = DefaultLyrics
	}

	if _, err := s.db.Exec(r.Context(), `
		UPDATE songs SET title = $2, artist = $3, lyrics = $4 WHERE id = $1
	`, sg.ID, sg.Title, sg.Artist, sg.Lyrics); err != nil {
		log.Printf("music-service: update song: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"song": sg})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	sg, ok := s.fetchSong(w, r)
	if !ok {
		return
	}

	if _, err := s.db.Exec(r.Context(), `DELETE FROM songs WHERE id = $1`, sg.ID); err != nil {
		log.Printf("music-service: delete song: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	// The metadata is gone, so the request succeeds even if the file sticks
	// around.
	if err := s.files.Remove(sg.File); err != nil {
		log.Printf("music-service: delete song file %s: %v", sg.File, err)
	}

	httpx.NoContent(w)
}

func (s *Server) handlePlaySong(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, false)
}

func (s *Server) handleDownloadSong(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, true)
}

// serveFile exposes the stored audio as a seekable byte source; range
// parsing and 206 responses are handled by http.ServeContent.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, attachment bool) {
	sg, ok := s.fetchSong(w, r)
	if !ok {
		return
	}

	f, err := s.files.Open(sg.File)
	if err != nil {
		// A dangling reference after a best-effort delete race lands here.
		log.Printf("music-service: open song file %s: %v", sg.File, err)
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Printf("music-service: stat song file %s: %v", sg.File, err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}

	w.Header().Set("Content-Type", "audio/mp3")
	w.Header().Set("Accept-Ranges", "bytes")
	if attachment {
		w.Header().Set("Content-Disposition", `attachment; filename="`+sg.File+`"`)
	}

	http.ServeContent(w, r, sg.File, info.ModTime(), f)
}

// fetchSong resolves the {id} route param; it has already written the error
// response when ok is false.
func (s *Server) fetchSong(w http.ResponseWriter, r *http.Request) (Song, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return Song{}, false
	}

	row := s.db.QueryRow(r.Context(), `SELECT `+columns+` FROM songs WHERE id = $1`, id)
	sg, err := scanSong(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.Error(w, http.StatusNotFound, httpx.MsgNotFound)
		return Song{}, false
	}
	if err != nil {
		log.Printf("music-service: fetch song: %v", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return Song{}, false
	}
	return sg, true
}
